// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── errors.go        # Domain errors and driver error classification
//	├── books/           # Book CRUD operations
//	└── audit/           # Audit event storage and retention
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type that receives the *gorm.DB
// handle explicitly:
//
//	db, err := database.Open(cfg.Database)
//
//	booksRepo := books.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	book, err := booksRepo.GetByISBN(ctx, "1123112")
//	if errors.Is(err, database.ErrNotFound) {
//		// respond 404
//	}
//
// # Errors
//
// Repositories never return raw driver errors for expected failures. Missing
// rows become ErrNotFound and duplicate keys become ErrConstraintViolation,
// both wrapped so the driver message stays available for logs.
//
// # Adding a New Domain
//
// To add a new domain (e.g., reviews):
//
//  1. Create a new sub-package: internal/database/reviews/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
