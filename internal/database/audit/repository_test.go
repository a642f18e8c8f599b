package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	event := &entities.AuditEvent{
		EventType:   entities.AuditEventCreate,
		Action:      "book_create",
		Description: "Created book: History of Japan",
		EntityType:  "book",
		EntityKey:   "1123112",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEventsForEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Three events for one book, one for another
	for i, action := range []string{"book_create", "book_update", "book_delete"} {
		err := repo.LogEvent(ctx, &entities.AuditEvent{
			EventType:  entities.AuditEventUpdate,
			Action:     action,
			EntityType: "book",
			EntityKey:  "1123112",
			Status:     entities.AuditStatusSuccess,
			CreatedAt:  time.Now().Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{
		Action:     "book_create",
		EntityType: "book",
		EntityKey:  "3447323",
		Status:     entities.AuditStatusSuccess,
	}))

	events, err := repo.GetEventsForEntity(ctx, "book", "1123112", 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "book_delete", events[0].Action)
	assert.Equal(t, "book_create", events[2].Action)

	limited, err := repo.GetEventsForEntity(ctx, "book", "1123112", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	total, err := repo.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// Create old and new events
	oldEvent := &entities.AuditEvent{
		Action:    "book_create",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	newEvent := &entities.AuditEvent{
		Action:    "book_update",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}

	require.NoError(t, repo.LogEvent(ctx, oldEvent))
	require.NoError(t, repo.LogEvent(ctx, newEvent))

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	total, err := repo.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
