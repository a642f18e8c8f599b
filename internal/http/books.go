package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/schema"
)

// BookStore defines the persistence operations behind the /books routes.
type BookStore interface {
	Create(ctx context.Context, book *entities.Book) (*entities.Book, error)
	GetAll(ctx context.Context) ([]entities.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*entities.Book, error)
	Update(ctx context.Context, isbn string, changes entities.BookChanges) (*entities.Book, error)
	Delete(ctx context.Context, isbn string) error
}

// AuditLogger records successful book mutations.
type AuditLogger interface {
	LogBookCreated(ctx context.Context, meta audit.RequestMeta, book *entities.Book)
	LogBookUpdated(ctx context.Context, meta audit.RequestMeta, book *entities.Book)
	LogBookDeleted(ctx context.Context, meta audit.RequestMeta, isbn string)
}

type BooksController struct {
	store        BookStore
	audit        AuditLogger
	maxBodyBytes int64
}

// NewBooksController creates the /books controller. auditLogger may be nil.
func NewBooksController(store BookStore, auditLogger AuditLogger, maxBodyBytes int64) *BooksController {
	return &BooksController{
		store:        store,
		audit:        auditLogger,
		maxBodyBytes: maxBodyBytes,
	}
}

// CreateBook validates the payload against the create schema and stores it.
// POST /books
func (bc *BooksController) CreateBook(c *gin.Context) {
	payload, err := decodeObject(c, bc.maxBodyBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	if errs := schema.Validate(payload, schema.BookCreate); len(errs) > 0 {
		respondError(c, errs)
		return
	}

	book := bookFromPayload(payload)
	created, err := bc.store.Create(c.Request.Context(), book)
	if err != nil {
		c.Set(conflictKey, book.ISBN)
		respondError(c, err)
		return
	}

	if bc.audit != nil {
		bc.audit.LogBookCreated(c.Request.Context(), requestMeta(c), created)
	}

	respondCreated(c, gin.H{"book": created})
}

// GetAllBooks lists every book.
// GET /books
func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.store.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": books})
}

// GetBook returns a single book.
// GET /books/:isbn
func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.store.GetByISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"book": book})
}

// UpdateBook replaces the mutable fields of a book.
// PUT /books/:isbn
func (bc *BooksController) UpdateBook(c *gin.Context) {
	payload, err := decodeObject(c, bc.maxBodyBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	if errs := schema.Validate(payload, schema.BookUpdate); len(errs) > 0 {
		respondError(c, errs)
		return
	}

	updated, err := bc.store.Update(c.Request.Context(), c.Param("isbn"), changesFromPayload(payload))
	if err != nil {
		respondError(c, err)
		return
	}

	if bc.audit != nil {
		bc.audit.LogBookUpdated(c.Request.Context(), requestMeta(c), updated)
	}

	c.JSON(http.StatusOK, gin.H{"book": updated})
}

// DeleteBook removes a book. A second delete of the same ISBN is a 404.
// DELETE /books/:isbn
func (bc *BooksController) DeleteBook(c *gin.Context) {
	isbn := c.Param("isbn")
	if err := bc.store.Delete(c.Request.Context(), isbn); err != nil {
		respondError(c, err)
		return
	}

	if bc.audit != nil {
		bc.audit.LogBookDeleted(c.Request.Context(), requestMeta(c), isbn)
	}

	respondSuccess(c, "Book deleted")
}

// bookFromPayload builds a book from a payload that passed schema.BookCreate.
func bookFromPayload(p map[string]any) *entities.Book {
	book := &entities.Book{
		AmazonURL: optString(p, "amazon_url"),
		Author:    optString(p, "author"),
		Language:  optString(p, "language"),
		Pages:     optInt(p, "pages"),
		Publisher: optString(p, "publisher"),
		Year:      optInt(p, "year"),
	}
	if isbn := optString(p, "isbn"); isbn != nil {
		book.ISBN = *isbn
	}
	if title := optString(p, "title"); title != nil {
		book.Title = *title
	}
	return book
}

// changesFromPayload builds the replacement set from a payload that passed schema.BookUpdate.
func changesFromPayload(p map[string]any) entities.BookChanges {
	return entities.BookChanges{
		AmazonURL: optString(p, "amazon_url"),
		Author:    optString(p, "author"),
		Language:  optString(p, "language"),
		Pages:     optInt(p, "pages"),
		Publisher: optString(p, "publisher"),
		Title:     optString(p, "title"),
		Year:      optInt(p, "year"),
	}
}

func optString(p map[string]any, key string) *string {
	if s, ok := p[key].(string); ok {
		return &s
	}
	return nil
}

func optInt(p map[string]any, key string) *int {
	v, ok := schema.Coerce(p[key], schema.KindInteger)
	if !ok {
		return nil
	}
	n := int(v.(int64))
	return &n
}
