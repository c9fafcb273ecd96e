package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/events"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// AddBooksUseCase 图书入库用例
// 设计说明:
// 1. 应用层负责用例编排:逐项校验→调用Store批量入库→发布事件
// 2. 客户端可以提交单本或多本,HTTP层统一转成切片后进来
// 3. 重复项(标题+作者已在库)不是错误:跳过并在响应中报告,
//    与校验失败(返回错误)严格区分
type AddBooksUseCase struct {
	store     *book.Store
	publisher events.Publisher
}

// NewAddBooksUseCase 创建入库用例
func NewAddBooksUseCase(store *book.Store, publisher events.Publisher) *AddBooksUseCase {
	return &AddBooksUseCase{
		store:     store,
		publisher: publisher,
	}
}

// AddBookItem 单本图书入库请求项
type AddBookItem struct {
	Title  string
	Author string
	Year   int
	ISBN   string
}

// AddBooksRequest 入库请求DTO
type AddBooksRequest struct {
	Items []AddBookItem
}

// SkippedItem 因重复被跳过的项
type SkippedItem struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
}

// AddBooksResponse 入库响应DTO
// Created是实际入库的记录(已分配ID),Skipped枚举被跳过的重复项
type AddBooksResponse struct {
	Created []*book.Book  `json:"created"`
	Skipped []SkippedItem `json:"skipped"`
}

// Execute 执行入库用例
// 任何一项校验失败都拒绝整个请求;校验通过后重复项静默跳过
func (uc *AddBooksUseCase) Execute(ctx context.Context, req AddBooksRequest) (*AddBooksResponse, error) {
	items := make([]book.NewBook, len(req.Items))
	for i, item := range req.Items {
		n := book.NewBook{
			Title:  item.Title,
			Author: item.Author,
			Year:   item.Year,
			ISBN:   item.ISBN,
		}
		if err := book.ValidateNewBook(n); err != nil {
			return nil, err
		}
		items[i] = n
	}

	added, skippedItems, err := uc.store.AddBooks(ctx, items)
	if err != nil {
		return nil, err
	}

	// 发布book.created事件(尽力而为,失败只记日志)
	for _, b := range added {
		publishBookEvent(uc.publisher, events.RouteBookCreated, b)
	}

	if metrics.BooksAddedTotal != nil {
		for range added {
			metrics.IncCounter(metrics.BooksAddedTotal)
		}
		for range skippedItems {
			metrics.IncCounter(metrics.BooksSkippedTotal)
		}
		metrics.SetGauge(metrics.BooksLive, float64(uc.store.Count()))
	}

	skipped := make([]SkippedItem, len(skippedItems))
	for i, item := range skippedItems {
		skipped[i] = SkippedItem{
			Title:  item.Title,
			Author: item.Author,
			Reason: "duplicate",
		}
	}

	created := added
	if created == nil {
		created = []*book.Book{}
	}
	return &AddBooksResponse{
		Created: created,
		Skipped: skipped,
	}, nil
}
