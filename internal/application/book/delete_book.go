package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/events"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// DeleteBookUseCase 图书删除用例
type DeleteBookUseCase struct {
	store     *book.Store
	publisher events.Publisher
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(store *book.Store, publisher events.Publisher) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		store:     store,
		publisher: publisher,
	}
}

// Execute 执行删除用例,返回被删除的图书
func (uc *DeleteBookUseCase) Execute(ctx context.Context, rawID string) (*book.Book, error) {
	id, err := book.ParseBookID(rawID)
	if err != nil {
		return nil, err
	}

	deleted, err := uc.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	publishBookEvent(uc.publisher, events.RouteBookDeleted, deleted)

	if metrics.BooksLive != nil {
		metrics.SetGauge(metrics.BooksLive, float64(uc.store.Count()))
	}

	return deleted, nil
}
