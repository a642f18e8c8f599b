package books

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func historyOfJapan() *entities.Book {
	return &entities.Book{
		ISBN:      "1123112",
		AmazonURL: strPtr("https://amazon.com/testbook"),
		Author:    strPtr("Harry"),
		Language:  strPtr("Japanese"),
		Pages:     intPtr(101),
		Publisher: strPtr("New publisher"),
		Title:     "History of Japan",
		Year:      intPtr(2000),
	}
}

func TestRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	t.Run("persists the book with timestamps", func(t *testing.T) {
		book, err := repo.Create(ctx, historyOfJapan())
		require.NoError(t, err)

		assert.Equal(t, "1123112", book.ISBN)
		assert.False(t, book.CreatedAt.IsZero())
		assert.False(t, book.UpdatedAt.IsZero())

		stored, err := repo.GetByISBN(ctx, "1123112")
		require.NoError(t, err)
		assert.Equal(t, "History of Japan", stored.Title)
		assert.Equal(t, 101, *stored.Pages)
		assert.Equal(t, "https://amazon.com/testbook", *stored.AmazonURL)
	})

	t.Run("duplicate isbn is a constraint violation", func(t *testing.T) {
		_, err := repo.Create(ctx, historyOfJapan())
		require.Error(t, err)
		assert.ErrorIs(t, err, database.ErrConstraintViolation)

		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestRepository_GetAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	t.Run("empty table returns empty slice", func(t *testing.T) {
		books, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("returns books ordered by title", func(t *testing.T) {
		_, err := repo.Create(ctx, historyOfJapan())
		require.NoError(t, err)
		_, err = repo.Create(ctx, &entities.Book{ISBN: "3447323", Title: "A little sea turtle"})
		require.NoError(t, err)

		books, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "3447323", books[0].ISBN)
		assert.Equal(t, "1123112", books[1].ISBN)
	})
}

func TestRepository_GetByISBN_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	book, err := repo.GetByISBN(context.Background(), "999")
	assert.Nil(t, book)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, historyOfJapan())
	require.NoError(t, err)

	t.Run("replaces all mutable fields", func(t *testing.T) {
		updated, err := repo.Update(ctx, "1123112", entities.BookChanges{
			AmazonURL: strPtr("https://taco.com"),
			Author:    strPtr("mctest"),
			Language:  strPtr("english"),
			Pages:     intPtr(1000),
			Publisher: strPtr("yeah right"),
			Title:     strPtr("UPDATED BOOK"),
			Year:      intPtr(2000),
		})
		require.NoError(t, err)

		assert.Equal(t, "1123112", updated.ISBN)
		assert.Equal(t, "UPDATED BOOK", updated.Title)
		assert.Equal(t, "mctest", *updated.Author)
		assert.Equal(t, 1000, *updated.Pages)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("omitted optional fields are cleared and title is kept", func(t *testing.T) {
		updated, err := repo.Update(ctx, "1123112", entities.BookChanges{
			Author: strPtr("Someone Else"),
		})
		require.NoError(t, err)

		assert.Equal(t, "UPDATED BOOK", updated.Title)
		assert.Equal(t, "Someone Else", *updated.Author)
		assert.Nil(t, updated.AmazonURL)
		assert.Nil(t, updated.Pages)
		assert.Nil(t, updated.Year)
	})

	t.Run("missing isbn is not found", func(t *testing.T) {
		_, err := repo.Update(ctx, "999", entities.BookChanges{Title: strPtr("Nope")})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, historyOfJapan())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "1123112"))

	_, err = repo.GetByISBN(ctx, "1123112")
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = repo.Delete(ctx, "1123112")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRepository_ConcurrentDuplicateCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	const attempts = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, historyOfJapan())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, database.ErrConstraintViolation) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, rejected)
}
