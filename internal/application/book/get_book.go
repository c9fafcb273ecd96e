package book

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// GetBookUseCase 图书详情查询用例
type GetBookUseCase struct {
	store *book.Store
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(store *book.Store) *GetBookUseCase {
	return &GetBookUseCase{store: store}
}

// Execute 按原始ID字符串查询图书
// ID格式非法→参数错误;ID不存在→图书不存在
func (uc *GetBookUseCase) Execute(_ context.Context, rawID string) (*book.Book, error) {
	id, err := book.ParseBookID(rawID)
	if err != nil {
		return nil, err
	}
	return uc.store.Get(id)
}
