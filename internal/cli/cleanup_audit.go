package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditrepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// CleanupAuditCommand deletes expired audit events once, outside the scheduler.
type CleanupAuditCommand struct {
	Database      config.Database
	RetentionDays int
}

func NewCleanupAuditCommand(cfg *config.Config) *CleanupAuditCommand {
	return &CleanupAuditCommand{
		Database:      cfg.Database,
		RetentionDays: cfg.Audit.RetentionDays,
	}
}

func (cmd *CleanupAuditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-audit", flag.ContinueOnError)

	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.IntVar(&cmd.RetentionDays, "days", cmd.RetentionDays, "Delete audit events older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-audit [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete audit events older than the retention window.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.RetentionDays <= 0 {
		return fmt.Errorf("-days must be positive, got %d", cmd.RetentionDays)
	}

	return nil
}

func (cmd *CleanupAuditCommand) Run() error {
	db, err := database.Open(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := audit.NewService(auditrepo.NewRepository(db.DB))

	deleted, err := tasks.RunAuditCleanup(context.Background(), service, cmd.RetentionDays)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d audit events older than %d days\n", deleted, cmd.RetentionDays)
	return nil
}
