package book

import (
	"log"
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/events"
)

// publishBookEvent 发布图书变更事件
// 事件是尽力而为的:发布失败只记日志,不影响CRUD主流程
func publishBookEvent(publisher events.Publisher, routingKey string, b *book.Book) {
	evt := events.BookEvent{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Year:      b.Year,
		ISBN:      b.ISBN,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := publisher.Publish(routingKey, evt); err != nil {
		log.Printf("发布%s事件失败: %v", routingKey, err)
	}
}
