package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookPayload 单本图书的提交载荷
// 客户端提交的id会被忽略(未定义字段直接丢弃),ID永远由服务端分配
type BookPayload struct {
	Title  string `json:"title" example:"1984"`
	Author string `json:"author" example:"George Orwell"`
	Year   int    `json:"year" example:"1949"`
	ISBN   string `json:"isbn" example:"9780451524935"`
}

// AddBooksRequest 入库请求:单个图书对象或图书对象数组
// 设计说明:两种形态在反序列化时统一为切片,Batch记录客户端
// 用的是哪种形态(目前仅用于日志/调试,响应结构一致)
type AddBooksRequest struct {
	Items []BookPayload
	Batch bool
}

// UnmarshalJSON 识别载荷形态:以'['开头按数组解析,否则按单个对象解析
func (r *AddBooksRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return errors.New("请求体为空")
	}

	if trimmed[0] == '[' {
		var items []BookPayload
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		r.Items = items
		r.Batch = true
		return nil
	}

	var single BookPayload
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.Items = []BookPayload{single}
	r.Batch = false
	return nil
}

// UpdateBookRequest 部分更新载荷
// 指针字段区分"未提供"和"提供了零值":缺失字段保留原值
type UpdateBookRequest struct {
	Title  *string `json:"title" example:"Animal Farm"`
	Author *string `json:"author" example:"George Orwell"`
	Year   *int    `json:"year" example:"1945"`
	ISBN   *string `json:"isbn" example:"9780452284241"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID     uint   `json:"id" example:"1"`
	Title  string `json:"title" example:"1984"`
	Author string `json:"author" example:"George Orwell"`
	Year   int    `json:"year" example:"1949"`
	ISBN   string `json:"isbn" example:"9780451524935"`
}

// FromEntity 领域实体 → HTTP响应
func FromEntity(b *book.Book) BookResponse {
	return BookResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Year:   b.Year,
		ISBN:   b.ISBN,
	}
}

// FromEntities 批量转换
func FromEntities(books []*book.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = FromEntity(b)
	}
	return out
}

// SkippedBook 因重复被跳过的项
type SkippedBook struct {
	Title  string `json:"title" example:"1984"`
	Author string `json:"author" example:"George Orwell"`
	Reason string `json:"reason" example:"duplicate"`
}

// AddBooksResponse 入库响应
// created是实际入库的记录,skipped枚举被跳过的重复项
type AddBooksResponse struct {
	Created []BookResponse `json:"created"`
	Skipped []SkippedBook  `json:"skipped"`
}

// NewAddBooksResponse 应用层DTO → HTTP响应
func NewAddBooksResponse(result *appbook.AddBooksResponse) AddBooksResponse {
	skipped := make([]SkippedBook, len(result.Skipped))
	for i, s := range result.Skipped {
		skipped[i] = SkippedBook{
			Title:  s.Title,
			Author: s.Author,
			Reason: s.Reason,
		}
	}
	return AddBooksResponse{
		Created: FromEntities(result.Created),
		Skipped: skipped,
	}
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	Books      []BookResponse `json:"books"`
	Total      int            `json:"total" example:"42"`
	Page       int            `json:"page" example:"1"`
	Limit      int            `json:"limit" example:"10"`
	TotalPages int            `json:"total_pages" example:"5"`
}

// DeleteBookResponse 删除响应
type DeleteBookResponse struct {
	Message     string       `json:"message" example:"图书已删除"`
	DeletedBook BookResponse `json:"deleted_book"`
}
