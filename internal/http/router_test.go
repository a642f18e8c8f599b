package http

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditrepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/entities"
)

type testServer struct {
	router *gin.Engine
	db     *database.Database
	books  *books.Repository
	audit  *auditrepo.Repository
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookRepo := books.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)

	router := NewRouter(RouterConfig{
		BookStore:      bookRepo,
		Database:       db,
		AuditLogger:    audit.NewService(auditRepo),
		MaxBodyBytes:   1 << 20,
		MetricsEnabled: true,
		Version:        "test",
	})

	return &testServer{router: router, db: db, books: bookRepo, audit: auditRepo}
}

// seedBook inserts the fixture book used across the route tests.
func (s *testServer) seedBook(t *testing.T) {
	t.Helper()
	url := "https://amazon.com/testbook"
	author := "Harry"
	language := "Japanese"
	publisher := "New publisher"
	pages := 101
	year := 2000

	_, err := s.books.Create(context.Background(), &entities.Book{
		ISBN:      "1123112",
		AmazonURL: &url,
		Author:    &author,
		Language:  &language,
		Pages:     &pages,
		Publisher: &publisher,
		Title:     "History of Japan",
		Year:      &year,
	})
	require.NoError(t, err)
}

func TestRoutes_GetBooks(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "GET", "/books", "")

	assert.Equal(t, http.StatusOK, w.Code)
	list := decodeBody(t, w)["books"].([]any)
	require.Len(t, list, 1)

	book := list[0].(map[string]any)
	assert.Equal(t, "1123112", book["isbn"])
	assert.Equal(t, "https://amazon.com/testbook", book["amazon_url"])
	assert.Equal(t, "Harry", book["author"])
	assert.Equal(t, "Japanese", book["language"])
	assert.Equal(t, float64(101), book["pages"])
	assert.Equal(t, "New publisher", book["publisher"])
	assert.Equal(t, "History of Japan", book["title"])
	assert.Equal(t, float64(2000), book["year"])
}

func TestRoutes_CreateBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "POST", "/books", seaTurtle)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "The little sea turtle", decodeBody(t, w)["book"].(map[string]any)["title"])

	w = doRequest(s.router, "GET", "/books", "")
	list := decodeBody(t, w)["books"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "History of Japan", list[0].(map[string]any)["title"])
	assert.Equal(t, "The little sea turtle", list[1].(map[string]any)["title"])

	w = doRequest(s.router, "POST", "/books", seaTurtle)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(s.router, "POST", "/books", `{"year": 2000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoutes_GetBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "GET", "/books/1123112", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1123112", decodeBody(t, w)["book"].(map[string]any)["isbn"])

	w = doRequest(s.router, "GET", "/books/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "There is no book with an isbn '999'", errorMessage(t, w))
}

func TestRoutes_UpdateBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "PUT", "/books/1123112", `{
		"amazon_url": "https://taco.com",
		"author": "mctest",
		"language": "english",
		"pages": 1000,
		"publisher": "yeah right",
		"title": "UPDATED BOOK",
		"year": 2000
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	book := decodeBody(t, w)["book"].(map[string]any)
	assert.Equal(t, "UPDATED BOOK", book["title"])
	assert.Equal(t, "mctest", book["author"])
	assert.Equal(t, float64(1000), book["pages"])

	w = doRequest(s.router, "PUT", "/books/1123112", `{"title": "UPDATED BOOK", "badField": "DO NOT ADD ME"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s.router, "PUT", "/books/1123112", `{"isbn": "1123112", "title": "UPDATED BOOK"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(s.router, "PUT", "/books/999", `{"title": "UPDATED BOOK"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_DeleteBook(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "DELETE", "/books/1123112", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Book deleted"}`, w.Body.String())

	w = doRequest(s.router, "DELETE", "/books/1123112", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(s.router, "GET", "/books", "")
	assert.JSONEq(t, `{"books": []}`, w.Body.String())
}

func TestRoutes_Scenario(t *testing.T) {
	s := setupTestServer(t)
	s.seedBook(t)

	w := doRequest(s.router, "POST", "/books", seaTurtle)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "3447323", decodeBody(t, w)["book"].(map[string]any)["isbn"])

	w = doRequest(s.router, "GET", "/books", "")
	assert.Len(t, decodeBody(t, w)["books"], 2)

	w = doRequest(s.router, "DELETE", "/books/1123112", "")
	assert.JSONEq(t, `{"message": "Book deleted"}`, w.Body.String())

	w = doRequest(s.router, "GET", "/books/1123112", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(s.router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"books": "1"`)
}

func TestRoutes_AuditTrail(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	req, _ := http.NewRequest("POST", "/books", strings.NewReader(seaTurtle))
	req.Header.Set(RequestIDHeader, "req-create-1")
	req.Header.Set("User-Agent", "bookstore-test")
	w := doServe(s.router, req)
	require.Equal(t, http.StatusCreated, w.Code)

	doRequest(s.router, "PUT", "/books/3447323", `{"title": "Renamed"}`)
	doRequest(s.router, "DELETE", "/books/3447323", "")
	// Failed mutations are not recorded.
	doRequest(s.router, "DELETE", "/books/3447323", "")

	events, err := s.audit.GetEventsForEntity(ctx, "book", "3447323", 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, entities.AuditEventDelete, events[0].EventType)
	assert.Equal(t, entities.AuditEventUpdate, events[1].EventType)
	assert.Equal(t, entities.AuditEventCreate, events[2].EventType)
	assert.Equal(t, "req-create-1", events[2].RequestID)
	assert.Equal(t, "bookstore-test", events[2].UserAgent)
	assert.Contains(t, events[2].Metadata, "The little sea turtle")
}

func TestRoutes_UnknownRouteAndMethod(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(s.router, "GET", "/authors", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "the requested resource could not be found", errorMessage(t, w))

	w = doRequest(s.router, "PATCH", "/books/1123112", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "the PATCH method is not supported for this resource", errorMessage(t, w))
}

func TestRoutes_Headers(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(s.router, "GET", "/books", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRoutes_DebugVars(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(s.router, "GET", "/debug/vars", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "total_requests_received")

	router := NewRouter(RouterConfig{BookStore: s.books, Database: s.db})
	w = doRequest(router, "GET", "/debug/vars", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_BodyTooLarge(t *testing.T) {
	s := setupTestServer(t)
	router := NewRouter(RouterConfig{BookStore: s.books, Database: s.db, MaxBodyBytes: 64})

	w := doRequest(router, "POST", "/books", seaTurtle)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "request body must not be larger than 64 bytes", errorMessage(t, w))
}

func TestRoutes_ForwardedForIgnoredWithoutTrustedProxy(t *testing.T) {
	s := setupTestServer(t)
	rl := NewRateLimiter(config.RateLimit{Enabled: true, RPS: 0.001, Burst: 2, IdleTTL: time.Minute})
	defer rl.Stop()

	auditRepo := auditrepo.NewRepository(s.db.DB)
	router := NewRouter(RouterConfig{
		BookStore:   s.books,
		Database:    s.db,
		AuditLogger: audit.NewService(auditRepo),
		RateLimiter: rl,
	})

	codes := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		req, _ := http.NewRequest("POST", "/books", strings.NewReader(seaTurtle))
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		codes = append(codes, doServe(router, req).Code)
	}

	assert.Equal(t, http.StatusCreated, codes[0])
	assert.Equal(t, http.StatusConflict, codes[1])
	for _, code := range codes[2:] {
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
	assert.Equal(t, 1, rl.Clients())

	events, err := auditRepo.GetEventsForEntity(context.Background(), "book", "3447323", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "203.0.113.7", events[0].IPAddress)
}

func TestRoutes_ForwardedForFromTrustedProxy(t *testing.T) {
	s := setupTestServer(t)
	rl := NewRateLimiter(config.RateLimit{Enabled: true, RPS: 0.001, Burst: 1, IdleTTL: time.Minute})
	defer rl.Stop()

	router := NewRouter(RouterConfig{
		BookStore:      s.books,
		Database:       s.db,
		RateLimiter:    rl,
		TrustedProxies: []string{"10.0.0.0/8"},
	})

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/books", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		assert.Equal(t, http.StatusOK, doServe(router, req).Code)
	}
	assert.Equal(t, 3, rl.Clients())

	// A proxy outside the trusted range cannot pick the client address.
	req, _ := http.NewRequest("GET", "/books", nil)
	req.RemoteAddr = "192.0.2.9:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.0")
	assert.Equal(t, http.StatusOK, doServe(router, req).Code)
	assert.Equal(t, 4, rl.Clients())
}
