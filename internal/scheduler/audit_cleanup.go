package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// TaskEnqueuer hands work to the background queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, tasks ...backlite.Task) ([]string, error)
}

// AuditCleanupScheduler periodically removes expired audit events. With a
// queue configured each tick enqueues a cleanup task; otherwise the cleanup
// runs inline on the cron goroutine.
type AuditCleanupScheduler struct {
	cleaner       tasks.AuditEventCleaner
	queue         TaskEnqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	parsed     cron.Schedule
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a scheduler instance. queue may be nil.
func NewAuditCleanupScheduler(cleaner tasks.AuditEventCleaner, queue TaskEnqueuer, cfg config.Audit) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		cleaner:       cleaner,
		queue:         queue,
		schedule:      cfg.CleanupSchedule,
		retentionDays: cfg.RetentionDays,
		cron:          cron.New(cron.WithParser(config.CronParser)),
	}
}

// Start registers the cleanup job. An empty schedule leaves the scheduler off.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.schedule == "" {
		log.Printf("Audit cleanup scheduler: no schedule configured, skipping")
		return nil
	}

	parsed, err := config.CronParser.Parse(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	s.entryID = s.cron.Schedule(parsed, cron.FuncJob(func() {
		if err := s.RunNow(runCtx); err != nil {
			log.Printf("Audit cleanup: %v", err)
		}
	}))
	s.parsed = parsed

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days. Next run: %v",
		s.schedule, s.retentionDays, parsed.Next(time.Now()))

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the cron loop.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow performs one cleanup pass immediately.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) error {
	if s.queue != nil {
		ids, err := s.queue.Enqueue(ctx, tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays})
		if err != nil {
			return err
		}
		log.Printf("Audit cleanup: enqueued task %v", ids)
		return nil
	}

	_, err := tasks.RunAuditCleanup(ctx, s.cleaner, s.retentionDays)
	return err
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next cleanup will occur
func (s *AuditCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	next := s.parsed.Next(time.Now())
	return &next
}
