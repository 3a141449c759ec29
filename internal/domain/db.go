package domain

import "context"

// Database is the store behind the blog's repositories. The SQLite backend
// embeds its migrations; Ping backs the /healthz endpoint.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
