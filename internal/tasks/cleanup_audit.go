package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const defaultAuditRetentionDays = 30

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupReporter is implemented by cleaners that also record each run.
type CleanupReporter interface {
	LogCleanup(ctx context.Context, deleted int64, retention time.Duration, err error)
}

// CleanupAuditEventsTask removes audit events older than the configured retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RunAuditCleanup deletes expired events once. It backs the queue processor,
// the scheduler when the queue is disabled, and the cleanup-audit command.
func RunAuditCleanup(ctx context.Context, cleaner AuditEventCleaner, retentionDays int) (int64, error) {
	if cleaner == nil {
		return 0, fmt.Errorf("audit event cleaner not configured")
	}

	if retentionDays <= 0 {
		retentionDays = defaultAuditRetentionDays
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	deleted, err := cleaner.DeleteOldEvents(ctx, retention)
	if reporter, ok := cleaner.(CleanupReporter); ok {
		reporter.LogCleanup(ctx, deleted, retention, err)
	}
	if err != nil {
		return 0, fmt.Errorf("cleanup audit events: %w", err)
	}

	log.Printf("[TASK] Cleaned up %d audit events older than %d days", deleted, retentionDays)
	return deleted, nil
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		_, err := RunAuditCleanup(ctx, cleaner, task.RetentionDays)
		return err
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
