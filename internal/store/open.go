package store

import (
	"context"
	"fmt"
)

// Backend kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
)

// Options selects and configures a backend.
type Options struct {
	Kind        string
	DatabaseURL string
	SQLitePath  string
}

// Open creates the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemory(), nil
	case KindPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires a database URL")
		}
		return ConnectPostgres(ctx, opts.DatabaseURL)
	case KindSQLite:
		if opts.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite backend requires a file path")
		}
		return OpenSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Kind)
	}
}
