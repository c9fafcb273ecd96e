package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// snapshotStore 基于MySQL的集合快照存储
// 设计说明:
// 1. 实现与jsonfile驱动相同的SnapshotStore端口:整表即快照,
//    Save在一个事务内清空并重建,读者要么看到旧快照要么看到新快照
// 2. 集合规模按单文件JSON同级预估(几百到几千条),全量重写的
//    开销可以接受;换更大的规模应改为行级CRUD仓储,那是另一个端口实现
type snapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore 创建MySQL快照存储
func NewSnapshotStore(db *gorm.DB) book.SnapshotStore {
	return &snapshotStore{db: db}
}

// Load 读取整个集合(按ID升序,保持插入顺序)
func (s *snapshotStore) Load(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageFailure, err, "读取图书数据失败")
	}

	books := make([]*book.Book, len(models))
	for i, m := range models {
		books[i] = &book.Book{
			ID:     m.ID,
			Title:  m.Title,
			Author: m.Author,
			Year:   m.Year,
			ISBN:   m.ISBN,
		}
	}
	return books, nil
}

// Save 事务内整体替换快照
func (s *snapshotStore) Save(ctx context.Context, books []*book.Book) error {
	models := make([]BookModel, len(books))
	for i, b := range books {
		models[i] = BookModel{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			Year:   b.Year,
			ISBN:   b.ISBN,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 全表删除需要显式放行(GORM默认拒绝不带条件的批量删除)
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&BookModel{}).Error; err != nil {
			return fmt.Errorf("清空旧快照失败: %w", err)
		}
		if len(models) > 0 {
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("写入新快照失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeStorageFailure, err, "数据持久化失败")
	}
	return nil
}
