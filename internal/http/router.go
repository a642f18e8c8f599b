package http

import (
	"expvar"
	"log"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// ClientIP feeds the rate limiter and audit rows, so forwarded
	// headers only count when they come from a configured proxy.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Printf("Invalid trusted proxies %v, trusting none: %v", cfg.TrustedProxies, err)
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(RequestIDMiddleware())
	router.Use(gin.Logger())
	router.Use(RecoveryMiddleware())

	// Apply security headers to all responses
	router.Use(SecurityHeadersMiddleware())

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.Middleware())
	}

	router.NoRoute(notFoundHandler)
	router.NoMethod(methodNotAllowedHandler)

	health := NewHealthController(cfg.Database, cfg.Version)
	if counter, ok := cfg.BookStore.(BookCounter); ok {
		health.books = counter
	}
	router.GET("/health", health.Status)

	if cfg.MetricsEnabled {
		router.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	}

	books := NewBooksController(cfg.BookStore, cfg.AuditLogger, cfg.MaxBodyBytes)
	router.POST("/books", books.CreateBook)
	router.GET("/books", books.GetAllBooks)
	router.GET("/books/:isbn", books.GetBook)
	router.PUT("/books/:isbn", books.UpdateBook)
	router.DELETE("/books/:isbn", books.DeleteBook)

	return router
}
