package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// Store 基于单个JSON文件的集合快照存储
// 设计说明:
// 1. 实现domain/book/repository.go定义的SnapshotStore接口
// 2. 整个集合序列化为一个缩进的JSON数组,保持人类可读,
//    重启后可直接重新装载
// 3. 写入路径:先写同目录下的临时文件,fsync后rename覆盖正式文件。
//    rename在同一文件系统内是原子的,并发读者和进程中途崩溃
//    都不会看到写了一半的快照
type Store struct {
	path string
}

// NewStore 创建JSON文件快照存储
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load 读取整个集合
// 文件不存在(首次启动)时返回空集合;文件存在但不是合法JSON时
// 返回存储错误,由调用方决定终止进程
func (s *Store) Load(_ context.Context) ([]*book.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*book.Book{}, nil
		}
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageFailure, err, "读取图书数据失败")
	}

	var books []*book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageFailure, err, "图书数据文件损坏")
	}
	if books == nil {
		books = []*book.Book{}
	}
	return books, nil
}

// Save 全量持久化整个集合,覆盖旧快照
func (s *Store) Save(_ context.Context, books []*book.Book) error {
	start := time.Now()

	// 空集合序列化为[]而不是null,保证文件始终可重新装载
	if books == nil {
		books = []*book.Book{}
	}

	data, err := json.MarshalIndent(books, "", "    ")
	if err != nil {
		return fmt.Errorf("序列化图书集合失败: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	// 临时文件必须与正式文件同目录,跨文件系统的rename不是原子的
	tmp, err := os.CreateTemp(dir, ".books-*.json.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("刷盘失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换快照文件失败: %w", err)
	}

	if metrics.SnapshotSaveDuration != nil {
		metrics.ObserveHistogram(metrics.SnapshotSaveDuration, time.Since(start).Seconds())
	}
	return nil
}
