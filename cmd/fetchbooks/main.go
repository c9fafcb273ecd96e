package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
)

// fetchbooks 分页拉取全量图书的示例客户端
// 从第1页开始逐页请求/api/books,翻页越界时服务端返回404,
// 以此作为遍历完成的信号
func main() {
	baseURL := flag.String("url", "http://127.0.0.1:5055/api/books", "图书列表接口地址")
	limit := flag.Int("limit", 10, "每页数量")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var allBooks []dto.BookResponse
	page := 1

	for {
		books, status, err := fetchPage(client, *baseURL, page, *limit)
		if err != nil {
			log.Fatalf("第%d页请求失败: %v", page, err)
		}

		if status == http.StatusNotFound {
			fmt.Printf("第%d页之后没有更多图书\n", page-1)
			break
		}
		if status != http.StatusOK {
			fmt.Printf("第%d页返回错误状态码: %d\n", page, status)
			break
		}
		if len(books) == 0 {
			fmt.Printf("第%d页之后没有更多图书\n", page-1)
			break
		}

		fmt.Printf("第%d页获取到%d本图书\n", page, len(books))
		allBooks = append(allBooks, books...)
		page++
	}

	fmt.Printf("拉取完成,共%d本图书\n", len(allBooks))
}

// fetchPage 请求单页图书列表
func fetchPage(client *http.Client, baseURL string, page, limit int) ([]dto.BookResponse, int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, 0, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	resp, err := client.Get(u.String())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	// 服务端统一响应格式:{code, message, data}
	var envelope struct {
		Code    int                   `json:"code"`
		Message string                `json:"message"`
		Data    dto.ListBooksResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("解析响应失败: %w", err)
	}

	return envelope.Data.Books, resp.StatusCode, nil
}
