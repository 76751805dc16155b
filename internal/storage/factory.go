package storage

import (
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
)

// NewStorage creates a storage backend based on the URI scheme:
//   - file:// -> FileStorage
//   - sqlite:// -> SQLStorage on a SQLite database file
//   - postgres:// -> SQLStorage on PostgreSQL (the raw URI is the DSN)
func NewStorage(uri *StorageURI, logger *slog.Logger) (Store, error) {
	switch uri.Scheme {
	case "file":
		return NewFileStorage(uri.Path, logger)

	case "sqlite":
		return NewSQLStorage(sqlite.Open(uri.Path), logger)

	case "postgres", "postgresql":
		return NewSQLStorage(postgres.Open(uri.Raw), logger)

	default:
		return nil, fmt.Errorf("unsupported storage scheme: %s", uri.Scheme)
	}
}
