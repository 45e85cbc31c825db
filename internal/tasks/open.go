package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Options selects and configures a storage backend.
type Options struct {
	Driver        string // "sqlite" (default), "postgres", "neo4j" or "memory"
	DSN           string // sqlite path or postgres connection string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// Open returns the Backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", "sqlite":
		slog.Debug("tasks: opening sqlite store", "path", opts.DSN)
		return OpenSQLite(opts.DSN)
	case "postgres":
		slog.Debug("tasks: opening postgres store")
		return OpenPostgres(opts.DSN)
	case "neo4j":
		slog.Debug("tasks: opening neo4j store", "uri", opts.Neo4jURI)
		return OpenNeo4j(ctx, opts.Neo4jURI, opts.Neo4jUser, opts.Neo4jPassword)
	case "memory":
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
