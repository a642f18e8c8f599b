package config

const (
	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultMaxBodyBytes caps request bodies at 1 MiB
	DefaultMaxBodyBytes = 1 << 20
)
