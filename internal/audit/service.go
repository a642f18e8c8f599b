package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/entities"
)

const entityTypeBook = "book"

// RequestMeta identifies the HTTP request that caused an event.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event. Failures are logged and not returned,
// an audit write never fails the operation it describes.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) {
	if err := s.repo.LogEvent(ctx, event); err != nil {
		log.Printf("Failed to log audit event %s for %s %s: %v", event.Action, event.EntityType, event.EntityKey, err)
	}
}

// LogBookCreated records a book creation.
func (s *Service) LogBookCreated(ctx context.Context, meta RequestMeta, book *entities.Book) {
	event := s.bookEvent(meta, entities.AuditEventCreate, "book_create", book.ISBN, "Created book: "+book.Title)
	event.Metadata = snapshot(book)
	s.Log(ctx, event)
}

// LogBookUpdated records a book update with the stored result.
func (s *Service) LogBookUpdated(ctx context.Context, meta RequestMeta, book *entities.Book) {
	event := s.bookEvent(meta, entities.AuditEventUpdate, "book_update", book.ISBN, "Updated book: "+book.Title)
	event.Metadata = snapshot(book)
	s.Log(ctx, event)
}

// LogBookDeleted records a book deletion.
func (s *Service) LogBookDeleted(ctx context.Context, meta RequestMeta, isbn string) {
	s.Log(ctx, s.bookEvent(meta, entities.AuditEventDelete, "book_delete", isbn, "Deleted book: "+isbn))
}

// LogCleanup records a retention run.
func (s *Service) LogCleanup(ctx context.Context, deleted int64, retention time.Duration, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      "audit_cleanup",
		Description: "Removed expired audit events",
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"deleted_count":   deleted,
		"retention_hours": int64(retention.Hours()),
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.Log(ctx, event)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func (s *Service) bookEvent(meta RequestMeta, eventType entities.AuditEventType, action, isbn, description string) *entities.AuditEvent {
	return &entities.AuditEvent{
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityTypeBook,
		EntityKey:   isbn,
		RequestID:   meta.RequestID,
		IPAddress:   meta.IPAddress,
		UserAgent:   truncate(meta.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}
}

func snapshot(book *entities.Book) string {
	data, err := json.Marshal(book)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
