package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RatingsRepository persists per-user movie ratings. Values are whole stars
// in [1,5]; averages are rounded to one decimal place in SQL so every read
// path reports the same figure.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// GetGlobalRating returns the rounded average of all ratings for a movie,
// or nil when the movie has no ratings.
func (r *RatingsRepository) GetGlobalRating(ctx context.Context, movieID uuid.UUID) (*float64, error) {
	var rating *float64
	err := r.pool.QueryRow(ctx, `
        SELECT round(avg(rating), 1)::float8
        FROM ratings
        WHERE movieid = $1
    `, movieID).Scan(&rating)
	if err != nil {
		return nil, fmt.Errorf("global rating: %w", err)
	}
	return rating, nil
}

// GetRatingPair returns the global average and the caller's own rating in a
// single round trip. Either value is nil when absent; a nil userID yields a
// nil caller rating.
func (r *RatingsRepository) GetRatingPair(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error) {
	var (
		rating     *float64
		userRating *int
	)
	err := r.pool.QueryRow(ctx, `
        SELECT round(avg(rating), 1)::float8,
               (SELECT rating FROM ratings WHERE movieid = $1 AND userid = $2)
        FROM ratings
        WHERE movieid = $1
    `, movieID, userID).Scan(&rating, &userRating)
	if err != nil {
		return nil, nil, fmt.Errorf("rating pair: %w", err)
	}
	return rating, userRating, nil
}

// Upsert inserts the caller's rating or replaces the existing row for the
// (user, movie) pair. Conflict resolution happens in the storage engine, so
// concurrent callers cannot interleave a read-then-write race.
func (r *RatingsRepository) Upsert(ctx context.Context, movieID, userID uuid.UUID, rating int) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO ratings (userid, movieid, rating)
        VALUES ($1, $2, $3)
        ON CONFLICT (userid, movieid) DO UPDATE SET rating = EXCLUDED.rating
    `, userID, movieID, rating)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}
