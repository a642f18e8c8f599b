// Package books provides database operations for the book catalogue.
//
// # Usage
//
//	repo := books.NewRepository(db.DB)
//	book, err := repo.GetByISBN(ctx, "1123112")
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book. A duplicate ISBN yields database.ErrConstraintViolation.
func (r *Repository) Create(ctx context.Context, book *entities.Book) (*entities.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, fmt.Errorf("create book %s: %w", book.ISBN, database.MapError(err))
	}
	return book, nil
}

// GetAll returns every book ordered by title. An empty table yields an empty slice.
func (r *Repository) GetAll(ctx context.Context) ([]entities.Book, error) {
	books := make([]entities.Book, 0)
	err := r.db.WithContext(ctx).Order("title ASC, isbn ASC").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("list books: %w", database.MapError(err))
	}
	return books, nil
}

// GetByISBN retrieves a single book. A missing row yields database.ErrNotFound.
func (r *Repository) GetByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", isbn, database.MapError(err))
	}
	return &book, nil
}

// Update replaces the mutable columns of a book and returns the stored result.
func (r *Repository) Update(ctx context.Context, isbn string, changes entities.BookChanges) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).Where("isbn = ?", isbn).Updates(changes.Columns())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}
		return tx.Where("isbn = ?", isbn).First(&book).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update book %s: %w", isbn, database.MapError(err))
	}
	return &book, nil
}

// Delete removes a book. Deleting a missing ISBN yields database.ErrNotFound.
func (r *Repository) Delete(ctx context.Context, isbn string) error {
	result := r.db.WithContext(ctx).Where("isbn = ?", isbn).Delete(&entities.Book{})
	if result.Error != nil {
		return fmt.Errorf("delete book %s: %w", isbn, database.MapError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete book %s: %w", isbn, database.ErrNotFound)
	}
	return nil
}

// Count returns the number of stored books.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count books: %w", database.MapError(err))
	}
	return total, nil
}
