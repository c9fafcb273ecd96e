package book

import (
	"context"
)

// SnapshotStore 集合快照存储端口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 持久化单位是整个集合:每次变更后全量重写,不做增量追加,
//    与"读取整个集合→内存变更→整体落盘"的模型保持一致
// 3. 默认实现是JSON文件(internal/infrastructure/persistence/jsonfile),
//    替换存储格式(如MySQL)时CRUD逻辑不需要改动
type SnapshotStore interface {
	// Load 读取整个集合
	// 底层存储不存在(首次启动)时返回空集合,不报错;
	// 存在但无法解析时返回错误,由调用方决定是否终止进程
	Load(ctx context.Context) ([]*Book, error)

	// Save 全量持久化整个集合,覆盖旧快照
	// 实现必须保证原子性:并发读者任何时刻都看不到写了一半的快照
	// (先写临时位置再rename,或事务内整体替换)
	Save(ctx context.Context, books []*Book) error
}
