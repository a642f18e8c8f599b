package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
)

// MigrateCommand creates or updates the database schema and exits.
type MigrateCommand struct {
	Database config.Database
}

// NewMigrateCommand starts from the environment configuration; flags override it.
func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{Database: cfg.Database}
}

func (cmd *MigrateCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)

	driver := fs.String("driver", string(cmd.Database.Driver), "Database driver: sqlite or postgres")
	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.StringVar(&cmd.Database.URL, "url", cmd.Database.URL, "PostgreSQL connection URL")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s migrate [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create or update the books and audit_events tables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Database.Driver = config.DatabaseDriver(*driver)

	return nil
}

func (cmd *MigrateCommand) Run() error {
	target := cmd.Database.Path
	if cmd.Database.Driver == config.DriverPostgres {
		target = "postgres"
	}
	fmt.Printf("Migrating %s database (%s)\n", cmd.Database.Driver, target)

	// Open runs AutoMigrate
	db, err := database.Open(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	defer db.Close()

	fmt.Println("Schema is up to date")
	return nil
}
