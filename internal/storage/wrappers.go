package storage

import (
	"errors"

	"github.com/julianstephens/nexus/internal/storage/postgres"
	"github.com/julianstephens/nexus/internal/storage/sqlite"
)

// NewSQLiteStore opens a file-backed store rooted at path.
func NewSQLiteStore(path string) Provider {
	return sqlite.NewStore(path)
}

// NewPostgresStore opens a store backed by a PostgreSQL connection string.
// The string must not carry an embedded password; use the keyring instead.
func NewPostgresStore(connStr string) (Provider, error) {
	if ok, err := postgres.ValidateConnString(connStr); !ok {
		return nil, err
	}
	return postgres.New(connStr), nil
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password inline.
func HasEmbeddedCredentials(connStr string) bool {
	_, err := postgres.ValidateConnString(connStr)
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}
