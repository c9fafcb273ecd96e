package book

import (
	"context"
	"strconv"
	"strings"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// 分页默认值与上限
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 输入是原始查询参数表,先整体校验(未知键直接报错),
//    再拆分为过滤条件和分页参数
// 2. 过滤条件之间AND组合;过滤后的列表保持插入顺序再分页
// 3. 翻页越界(含结果集为空)返回"没有更多图书",不是空的成功页
type ListBooksUseCase struct {
	store *book.Store
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(store *book.Store) *ListBooksUseCase {
	return &ListBooksUseCase{store: store}
}

// ListBooksRequest 列表查询请求DTO
// Query是URL查询参数的键值表(每个键取第一个值)
type ListBooksRequest struct {
	Query map[string]string
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	Books      []*book.Book `json:"books"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"total_pages"`
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(_ context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if err := book.ValidateQuery(req.Query); err != nil {
		return nil, err
	}

	criteria := buildCriteria(req.Query)
	page, limit := buildPagination(req.Query)

	filtered := uc.store.List(criteria)

	items, total, totalPages, err := book.Paginate(filtered, page, limit)
	if err != nil {
		return nil, err
	}

	return &ListBooksResponse{
		Books:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// buildCriteria 从查询参数构建过滤条件
// 参数值已通过ValidateQuery,id/year在这里可以安全解析
func buildCriteria(query map[string]string) book.Criteria {
	var criteria book.Criteria

	if raw, ok := query["id"]; ok {
		id, _ := book.ParseBookID(raw)
		criteria.ID = &id
	}
	if raw, ok := query["year"]; ok {
		year, _ := strconv.Atoi(strings.TrimSpace(raw))
		criteria.Year = &year
	}
	if v, ok := query["title"]; ok {
		criteria.Title = &v
	}
	if v, ok := query["author"]; ok {
		criteria.Author = &v
	}
	if v, ok := query["isbn"]; ok {
		criteria.ISBN = &v
	}

	return criteria
}

// buildPagination 解析分页参数,应用默认值和上限
func buildPagination(query map[string]string) (page, limit int) {
	page = defaultPage
	limit = defaultLimit

	if raw, ok := query["page"]; ok {
		page, _ = strconv.Atoi(strings.TrimSpace(raw))
	}
	if raw, ok := query["limit"]; ok {
		limit, _ = strconv.Atoi(strings.TrimSpace(raw))
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
