package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// BookHandler 图书HTTP处理器
// 设计说明:处理器只做参数绑定和响应转换,业务规则和不变量
// 全部在应用层/领域层,保证换掉HTTP框架时核心逻辑不动
type BookHandler struct {
	addBooksUseCase   *appbook.AddBooksUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
	getBookUseCase    *appbook.GetBookUseCase
	updateBookUseCase *appbook.UpdateBookUseCase
	deleteBookUseCase *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBooksUseCase *appbook.AddBooksUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		addBooksUseCase:   addBooksUseCase,
		listBooksUseCase:  listBooksUseCase,
		getBookUseCase:    getBookUseCase,
		updateBookUseCase: updateBookUseCase,
		deleteBookUseCase: deleteBookUseCase,
	}
}

// ListBooks 查询图书列表
// @Summary      查询图书列表
// @Description  按title/author/id/year/isbn过滤(AND组合)并分页
// @Tags         图书
// @Produce      json
// @Param        title   query string false "书名(规范化精确匹配)"
// @Param        author  query string false "作者(规范化精确匹配)"
// @Param        id      query int    false "图书ID"
// @Param        year    query int    false "出版年份"
// @Param        isbn    query string false "ISBN号"
// @Param        page    query int    false "页码(1起始,默认1)"
// @Param        limit   query int    false "每页数量(默认10)"
// @Success      200 {object} response.Response{data=dto.ListBooksResponse}
// @Failure      400 {object} response.Response "存在无法识别的查询参数"
// @Failure      404 {object} response.Response "翻页越界或没有匹配的图书"
// @Failure      429 {object} response.Response "触发限流"
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	// URL查询参数表,每个键取第一个值
	query := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Query: query,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ListBooksResponse{
		Books:      dto.FromEntities(result.Books),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// GetBook 查询图书详情
// @Summary      查询图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      429 {object} response.Response "触发限流"
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	result, err := h.getBookUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.FromEntity(result)
	response.Success(c, &resp)
}

// AddBooks 图书入库
// @Summary      图书入库
// @Description  接受单个图书对象或图书对象数组;标题+作者重复的项跳过并在skipped中报告
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookPayload true "图书信息(或图书数组)"
// @Success      201 {object} response.Response{data=dto.AddBooksResponse}
// @Failure      400 {object} response.Response "载荷校验失败"
// @Router       /api/books [post]
func (h *BookHandler) AddBooks(c *gin.Context) {
	var req dto.AddBooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}
	if len(req.Items) == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "请求体中没有图书")
		return
	}

	items := make([]appbook.AddBookItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = appbook.AddBookItem{
			Title:  item.Title,
			Author: item.Author,
			Year:   item.Year,
			ISBN:   item.ISBN,
		}
	}

	result, err := h.addBooksUseCase.Execute(c.Request.Context(), appbook.AddBooksRequest{
		Items: items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.NewAddBooksResponse(result)
	response.Created(c, &resp)
}

// UpdateBook 图书部分更新
// @Summary      更新图书
// @Description  载荷中出现的字段覆盖原值,缺失字段保留;ID不可修改
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "要更新的字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "ID格式错误或载荷为空"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "更新会与其他图书的标题+作者冲突"
// @Failure      429 {object} response.Response "触发限流"
// @Router       /api/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), c.Param("id"), appbook.UpdateBookRequest{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		ISBN:   req.ISBN,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.FromEntity(result)
	response.Success(c, &resp)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.DeleteBookResponse}
// @Failure      400 {object} response.Response "ID格式错误"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      429 {object} response.Response "触发限流"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	deleted, err := h.deleteBookUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.DeleteBookResponse{
		Message:     "图书已删除",
		DeletedBook: dto.FromEntity(deleted),
	})
}
