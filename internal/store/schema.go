package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Bootstrap DDL applied at startup. Statements are idempotent; the unique
// slug index is what enforces the one-movie-per-(title, year) discipline.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS movies (
	    id UUID PRIMARY KEY,
	    slug TEXT NOT NULL,
	    title TEXT NOT NULL,
	    yearofrelease INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS movies_slug_idx
	    ON movies USING btree(slug)`,
	`CREATE TABLE IF NOT EXISTS genres (
	    movieid UUID REFERENCES movies(id),
	    name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
	    userid UUID,
	    movieid UUID REFERENCES movies(id),
	    rating INTEGER NOT NULL,
	    PRIMARY KEY (userid, movieid)
	)`,
}

// ApplySchema runs the bootstrap DDL against the given pool. Exposed for
// test environments that build their own pool.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// EnsureSchema creates the movies, genres and ratings tables if they do not
// already exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return ApplySchema(ctx, s.pool)
}
