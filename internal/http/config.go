package http

import (
	"github.com/mrlokans/bookstore/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	BookStore BookStore
	Database  *database.Database

	// Audit trail (optional)
	AuditLogger AuditLogger

	// Per-client rate limiting (optional)
	RateLimiter *RateLimiter

	// Proxies allowed to set X-Forwarded-For. Nil trusts none.
	TrustedProxies []string

	// Request limits
	MaxBodyBytes int64

	// Expose expvar counters at /debug/vars
	MetricsEnabled bool

	// Application info
	Version string
}
