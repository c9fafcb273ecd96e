package book

import (
	"context"
	"strings"
	"sync"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// Store 图书集合存储(领域核心)
// 设计说明:
// 1. 持有集合的内存主本,启动时从SnapshotStore整体装载,
//    每次变更后整体落盘("读集合→内存变更→全量持久化")
// 2. "变更+落盘"是一个临界区:写操作持互斥锁串行执行,
//    防止两个并发写相互覆盖丢失更新;读操作只持读锁,可并发进行
// 3. 去重约束:在库图书的规范化(标题,作者)组合两两不同
// 4. ID单调分配:装载时取max(id)+1,删除不回收,进程内不复用
// 5. 落盘失败时回滚内存变更,保证内存状态和快照一致
type Store struct {
	mu        sync.RWMutex
	snapshots SnapshotStore
	books     []*Book
	nextID    uint
}

// NewStore 创建并装载图书集合
// 快照不存在时从空集合开始;快照损坏时返回错误,
// 由main决定终止进程(带着无法解析的数据继续服务没有意义)
func NewStore(snapshots SnapshotStore) (*Store, error) {
	books, err := snapshots.Load(context.Background())
	if err != nil {
		return nil, err
	}

	var maxID uint
	for _, b := range books {
		if b.ID > maxID {
			maxID = b.ID
		}
	}

	return &Store{
		snapshots: snapshots,
		books:     books,
		nextID:    maxID + 1,
	}, nil
}

// AddBooks 批量入库
// 对每一项:规范化(标题,作者)后与在库图书(以及本批次前面的项)比对,
// 重复项跳过并在skipped中报告——重复不是错误,调用方据此与校验失败区分;
// 非重复项分配下一个ID后追加。整批只落盘一次。
// 落盘失败时回滚全部内存变更并返回存储错误。
func (s *Store) AddBooks(ctx context.Context, items []NewBook) (added []*Book, skipped []NewBook, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[PairKey]struct{}, len(s.books))
	for _, b := range s.books {
		live[b.PairKey()] = struct{}{}
	}

	prevLen := len(s.books)
	prevNextID := s.nextID

	for _, item := range items {
		key := NormalizePair(item.Title, item.Author)
		if _, dup := live[key]; dup {
			skipped = append(skipped, item)
			continue
		}

		b := &Book{
			ID:     s.nextID,
			Title:  strings.TrimSpace(item.Title),
			Author: strings.TrimSpace(item.Author),
			Year:   item.Year,
			ISBN:   strings.TrimSpace(item.ISBN),
		}
		s.nextID++
		s.books = append(s.books, b)
		live[key] = struct{}{}
		added = append(added, b)
	}

	// 全部重复:集合未变,不需要落盘
	if len(added) == 0 {
		return nil, skipped, nil
	}

	if err := s.save(ctx); err != nil {
		s.books = s.books[:prevLen]
		s.nextID = prevNextID
		return nil, nil, err
	}

	return cloneAll(added), skipped, nil
}

// Get 按ID查找图书
func (s *Store) Get(id uint) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.ID == id {
			return b.Clone(), nil
		}
	}
	return nil, ErrBookNotFound
}

// Update 按ID部分更新
// 补丁中出现的字段覆盖原值,未出现的字段保留;ID不可修改。
// 应用补丁后重新校验去重约束:与*其他*在库图书冲突时拒绝更新,
// 两条记录都保持原样。
func (s *Store) Update(ctx context.Context, id uint, patch Patch) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrBookNotFound
	}

	candidate := s.books[idx].Clone()
	patch.apply(candidate)

	key := candidate.PairKey()
	for j, other := range s.books {
		if j != idx && other.PairKey() == key {
			return nil, ErrDuplicateBook
		}
	}

	old := s.books[idx]
	s.books[idx] = candidate

	if err := s.save(ctx); err != nil {
		s.books[idx] = old
		return nil, err
	}

	return candidate.Clone(), nil
}

// Delete 按ID删除
// 返回被删除的图书;ID不存在时返回ErrBookNotFound
func (s *Store) Delete(ctx context.Context, id uint) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrBookNotFound
	}

	backup := s.books
	removed := backup[idx]

	remaining := make([]*Book, 0, len(backup)-1)
	remaining = append(remaining, backup[:idx]...)
	remaining = append(remaining, backup[idx+1:]...)
	s.books = remaining

	if err := s.save(ctx); err != nil {
		s.books = backup
		return nil, err
	}

	return removed.Clone(), nil
}

// List 按条件过滤
// 返回满足全部条件的子集,保持插入顺序(即ID升序),过滤不重排
func (s *Store) List(criteria Criteria) []*Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Book
	for _, b := range s.books {
		if criteria.Matches(b) {
			result = append(result, b.Clone())
		}
	}
	return result
}

// Count 在库图书数
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// indexOf 返回指定ID在集合中的下标,不存在时返回-1
// 调用方必须已持有锁
func (s *Store) indexOf(id uint) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// save 全量落盘,失败时包装为存储错误(不向客户端暴露底层细节)
// 调用方必须已持有写锁
func (s *Store) save(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.books); err != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeStorageFailure, err, "数据持久化失败")
	}
	return nil
}

// cloneAll 批量复制
func cloneAll(books []*Book) []*Book {
	out := make([]*Book, len(books))
	for i, b := range books {
		out[i] = b.Clone()
	}
	return out
}

// Paginate 对过滤后的有序列表分页
// page/limit是1起始的正整数,返回[(page-1)*limit, page*limit)区间、
// 总数和总页数。请求超出最后一个非空页(包括结果集为空)时
// 返回ErrNoMoreBooks,而不是空的成功结果。
func Paginate(list []*Book, page, limit int) (items []*Book, total, totalPages int, err error) {
	if page < 1 || limit < 1 {
		return nil, 0, 0, apperrors.New(apperrors.ErrCodeInvalidParams, "page和limit必须是正整数")
	}

	total = len(list)
	if total == 0 {
		return nil, 0, 0, ErrNoMoreBooks
	}

	totalPages = (total + limit - 1) / limit
	if page > totalPages {
		return nil, total, totalPages, ErrNoMoreBooks
	}

	start := (page - 1) * limit
	end := start + limit
	if end > total {
		end = total
	}
	return list[start:end], total, totalPages, nil
}
