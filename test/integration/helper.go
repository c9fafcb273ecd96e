package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：集成测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则
// 将重复的代码（HTTP请求、JSON解析）封装成可复用的函数
//
// 运行方式：先启动服务（go run ./cmd/api），再执行go test ./test/integration/
// 服务不在线时整个套件跳过而不是失败

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:5055/api"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Status  int             `json:"-"` // HTTP状态码
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// BookData 图书响应数据
type BookData struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	ISBN   string `json:"isbn"`
}

// AddBooksData 入库响应数据
type AddBooksData struct {
	Created []BookData `json:"created"`
	Skipped []struct {
		Title  string `json:"title"`
		Author string `json:"author"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

// BookListData 图书列表响应数据
type BookListData struct {
	Books      []BookData `json:"books"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// RequireServer 检查服务是否在线，不在线时跳过测试
func RequireServer(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://localhost:5055/ping")
	if err != nil {
		t.Skipf("服务未启动，跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// DoJSON 发送带JSON载荷的请求并解析统一响应结构
//
// 教学说明：
// - 使用*testing.T参数，可以在失败时立即终止测试
// - 使用require包进行断言，失败会立即停止
// - 返回*Response而非error，简化调用方代码
func DoJSON(t *testing.T, method, url string, data interface{}) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	result.Status = resp.StatusCode
	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}) *Response {
	return DoJSON(t, http.MethodPost, url, data)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string) *Response {
	return DoJSON(t, http.MethodGet, url, nil)
}

// GenerateTestTitle 生成唯一的测试书名
//
// 教学说明：
// 使用时间戳确保唯一性，避免测试重复运行时
// 与在库图书的(标题,作者)去重约束冲突
func GenerateTestTitle(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// AddTestBook 入库一本测试图书并返回ID
func AddTestBook(t *testing.T, title, author string) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"title":  title,
		"author": author,
		"year":   2020,
	})
	require.Equal(t, 0, resp.Code, "图书入库失败: %s", resp.Message)

	var data AddBooksData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err, "解析入库响应失败")
	require.Len(t, data.Created, 1, "应入库一本图书")

	return data.Created[0].ID
}
