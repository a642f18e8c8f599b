package interfaces

// Compile-time checks that concrete types satisfy the interfaces their
// consumers declare.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

// AuditLogger implementations
var _ http.AuditLogger = (*audit.Service)(nil)

// AuditEventCleaner implementations
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.CleanupReporter = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

// TaskEnqueuer implementations
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
