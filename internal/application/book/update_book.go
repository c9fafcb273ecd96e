package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/events"
)

// UpdateBookUseCase 图书部分更新用例
// 设计说明:
// 1. 载荷中出现的字段覆盖原值,缺失字段保留;空载荷是参数错误
// 2. 更新后重新校验(标题,作者)去重约束,冲突时拒绝,
//    两条记录都保持原样
type UpdateBookUseCase struct {
	store     *book.Store
	publisher events.Publisher
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(store *book.Store, publisher events.Publisher) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		store:     store,
		publisher: publisher,
	}
}

// UpdateBookRequest 更新请求DTO
// 指针字段区分"未提供"和"提供了零值"
type UpdateBookRequest struct {
	Title  *string
	Author *string
	Year   *int
	ISBN   *string
}

// Execute 执行更新用例
func (uc *UpdateBookUseCase) Execute(ctx context.Context, rawID string, req UpdateBookRequest) (*book.Book, error) {
	id, err := book.ParseBookID(rawID)
	if err != nil {
		return nil, err
	}

	patch := book.Patch{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		ISBN:   req.ISBN,
	}
	if err := book.ValidatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := uc.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	publishBookEvent(uc.publisher, events.RouteBookUpdated, updated)
	return updated, nil
}
