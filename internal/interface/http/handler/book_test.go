package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/ratelimit"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/events"
	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// memorySnapshots 测试用内存快照存储
type memorySnapshots struct {
	books []*book.Book
}

func (m *memorySnapshots) Load(ctx context.Context) ([]*book.Book, error) {
	return m.books, nil
}

func (m *memorySnapshots) Save(ctx context.Context, books []*book.Book) error {
	m.books = books
	return nil
}

// newTestRouter 组装测试路由,与生产路由保持一致的中间件和路径
func newTestRouter(t *testing.T, ceilings ratelimit.Ceilings) (*gin.Engine, *ratelimit.MemoryLimiter) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()

	store, err := book.NewStore(&memorySnapshots{})
	require.NoError(t, err)

	publisher := events.NewNopPublisher()
	bookHandler := NewBookHandler(
		appbook.NewAddBooksUseCase(store, publisher),
		appbook.NewListBooksUseCase(store),
		appbook.NewGetBookUseCase(store),
		appbook.NewUpdateBookUseCase(store, publisher),
		appbook.NewDeleteBookUseCase(store, publisher),
	)

	limiter := ratelimit.NewMemoryLimiter(ceilings, time.Minute)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, false)

	r := gin.New()
	api := r.Group("/api")
	api.Use(rateLimitMiddleware.Limit())
	{
		books := api.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.POST("", bookHandler.AddBooks)
			books.PUT("/:id", bookHandler.UpdateBook)
			books.DELETE("/:id", bookHandler.DeleteBook)
		}
	}

	return r, limiter
}

// envelope 统一响应结构(data延迟解析)
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "响应体: %s", w.Body.String())
	return w, env
}

// noLimits 测试用:所有路由类别不限流
var noLimits = ratelimit.Ceilings{}

func TestBookAPI_Lifecycle(t *testing.T) {
	r, _ := newTestRouter(t, noLimits)

	t.Run("入库第一本图书", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost, "/api/books",
			`{"title": "1984", "author": "George Orwell", "year": 1949, "isbn": "978-0451524935"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var data dto.AddBooksResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Len(t, data.Created, 1)
		assert.Equal(t, uint(1), data.Created[0].ID)
		assert.Empty(t, data.Skipped)
	})

	t.Run("重复入库被跳过但仍返回201", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost, "/api/books",
			`{"title": " 1984 ", "author": "george orwell", "year": 1949}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var data dto.AddBooksResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Empty(t, data.Created)
		require.Len(t, data.Skipped, 1)
		assert.Equal(t, "duplicate", data.Skipped[0].Reason)
	})

	t.Run("数组载荷批量入库", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPost, "/api/books",
			`[{"title": "Animal Farm", "author": "George Orwell", "year": 1945},
			  {"title": "Brave New World", "author": "Aldous Huxley", "year": 1932}]`)

		require.Equal(t, http.StatusCreated, w.Code)

		var data dto.AddBooksResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Len(t, data.Created, 2)
	})

	t.Run("按作者过滤", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodGet, "/api/books?author=George%20Orwell", "")

		require.Equal(t, http.StatusOK, w.Code)

		var data dto.ListBooksResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Len(t, data.Books, 2)
		assert.Equal(t, "1984", data.Books[0].Title)
		assert.Equal(t, "Animal Farm", data.Books[1].Title)
		assert.Equal(t, 2, data.Total)
	})

	t.Run("查询图书详情", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodGet, "/api/books/1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var data dto.BookResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "1984", data.Title)
	})

	t.Run("部分更新只改出现的字段", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodPut, "/api/books/1", `{"year": 1950}`)

		require.Equal(t, http.StatusOK, w.Code)

		var data dto.BookResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 1950, data.Year)
		assert.Equal(t, "1984", data.Title)
		assert.Equal(t, "George Orwell", data.Author)
	})

	t.Run("删除图书并返回被删记录", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodDelete, "/api/books/1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var data dto.DeleteBookResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "1984", data.DeletedBook.Title)

		w, _ = doRequest(t, r, http.MethodGet, "/api/books/1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookAPI_Validation(t *testing.T) {
	r, _ := newTestRouter(t, noLimits)

	t.Run("缺标题拒绝整个请求", func(t *testing.T) {
		w, _ := doRequest(t, r, http.MethodPost, "/api/books",
			`{"author": "George Orwell", "year": 1949}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("批次中任何一项非法则整批拒绝", func(t *testing.T) {
		w, _ := doRequest(t, r, http.MethodPost, "/api/books",
			`[{"title": "Dune", "author": "Frank Herbert", "year": 1965},
			  {"title": "", "author": "Nobody", "year": 2000}]`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		// 合法的那一项也不应入库
		w, _ = doRequest(t, r, http.MethodGet, "/api/books?title=Dune", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("未知查询参数点名报错", func(t *testing.T) {
		w, env := doRequest(t, r, http.MethodGet, "/api/books?publisher=Penguin", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Message, "publisher")
	})

	t.Run("非法ID返回400", func(t *testing.T) {
		for _, path := range []string{"/api/books/abc", "/api/books/0", "/api/books/-1"} {
			w, _ := doRequest(t, r, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, "路径: %s", path)
		}
	})

	t.Run("空更新载荷返回400", func(t *testing.T) {
		doRequest(t, r, http.MethodPost, "/api/books",
			`{"title": "Dune", "author": "Frank Herbert", "year": 1965}`)

		w, _ := doRequest(t, r, http.MethodPut, "/api/books/1", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("更新造成重复返回409", func(t *testing.T) {
		doRequest(t, r, http.MethodPost, "/api/books",
			`{"title": "Messiah", "author": "Frank Herbert", "year": 1969}`)

		w, _ := doRequest(t, r, http.MethodPut, "/api/books/2", `{"title": "Dune"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBookAPI_Pagination(t *testing.T) {
	r, _ := newTestRouter(t, noLimits)

	// 入库25本,验证3页遍历后404收尾
	for i := 0; i < 25; i++ {
		body, _ := json.Marshal(map[string]interface{}{
			"title":  "Book " + strconv.Itoa(i+1),
			"author": "Author " + strconv.Itoa(i+1),
			"year":   1990 + i,
		})
		w, _ := doRequest(t, r, http.MethodPost, "/api/books", string(body))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("逐页遍历直到404", func(t *testing.T) {
		var fetched int
		page := 1
		for {
			w, env := doRequest(t, r, http.MethodGet,
				"/api/books?page="+strconv.Itoa(page)+"&limit=10", "")
			if w.Code == http.StatusNotFound {
				break
			}
			require.Equal(t, http.StatusOK, w.Code)

			var data dto.ListBooksResponse
			require.NoError(t, json.Unmarshal(env.Data, &data))
			fetched += len(data.Books)
			page++
		}

		assert.Equal(t, 25, fetched)
		assert.Equal(t, 4, page, "第4页应返回404")
	})

	t.Run("分页元信息", func(t *testing.T) {
		_, env := doRequest(t, r, http.MethodGet, "/api/books?page=3&limit=10", "")

		var data dto.ListBooksResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Len(t, data.Books, 5)
		assert.Equal(t, 25, data.Total)
		assert.Equal(t, 3, data.TotalPages)
	})

	t.Run("非法分页参数返回400", func(t *testing.T) {
		w, _ := doRequest(t, r, http.MethodGet, "/api/books?page=0", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, _ = doRequest(t, r, http.MethodGet, "/api/books?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookAPI_RateLimit(t *testing.T) {
	ceilings := ratelimit.Ceilings{
		http.MethodGet:    3,
		http.MethodDelete: 2,
	}
	r, limiter := newTestRouter(t, ceilings)

	doRequest(t, r, http.MethodPost, "/api/books",
		`{"title": "1984", "author": "George Orwell", "year": 1949}`)

	t.Run("超过窗口上限返回429", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			w, _ := doRequest(t, r, http.MethodGet, "/api/books", "")
			require.Equal(t, http.StatusOK, w.Code, "第%d次应放行", i+1)
		}

		w, _ := doRequest(t, r, http.MethodGet, "/api/books", "")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("POST不限流", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			w, _ := doRequest(t, r, http.MethodPost, "/api/books",
				`{"title": "Unique `+strconv.Itoa(i)+`", "author": "Writer", "year": 2000}`)
			require.Equal(t, http.StatusCreated, w.Code)
		}
	})

	t.Run("窗口重置后恢复放行", func(t *testing.T) {
		current := time.Now()
		limiter.SetNowFunc(func() time.Time { return current })

		for {
			w, _ := doRequest(t, r, http.MethodGet, "/api/books", "")
			if w.Code == http.StatusTooManyRequests {
				break
			}
		}

		current = current.Add(time.Minute)

		w, _ := doRequest(t, r, http.MethodGet, "/api/books", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
