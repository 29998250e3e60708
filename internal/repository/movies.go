package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filmgrid/movies-api/internal/domain"
)

// MoviesRepository provides persistence for movie entities. Every read
// projects the movie together with its genre set, the rounded global rating
// average and (when a caller id is supplied) the caller's own rating, all in
// a single round trip.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

// movieColumns is the shared projection. Genre and rating aggregation run as
// scalar subqueries so listing N movies never fans out into N follow-up
// queries. $1 is reserved for the caller's user id; a NULL id simply
// produces a NULL user rating.
const movieColumns = `
    m.id,
    m.slug,
    m.title,
    m.yearofrelease,
    (SELECT coalesce(array_agg(g.name), '{}') FROM genres g WHERE g.movieid = m.id),
    (SELECT round(avg(r.rating), 1)::float8 FROM ratings r WHERE r.movieid = m.id),
    (SELECT r.rating FROM ratings r WHERE r.movieid = m.id AND r.userid = $1)
`

// sortColumns whitelists the ORDER BY targets reachable from query options.
var sortColumns = map[string]string{
	"title":         "m.title",
	"yearofrelease": "m.yearofrelease",
}

// Create inserts the movie row and one genre row per genre inside a single
// transaction; the create is atomic, a failed genre insert aborts the whole
// movie. A slug collision returns ErrDuplicateSlug.
func (r *MoviesRepository) Create(ctx context.Context, movie domain.Movie) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create movie: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
        INSERT INTO movies (id, slug, title, yearofrelease)
        VALUES ($1, $2, $3, $4)
    `, movie.ID, movie.Slug(), movie.Title, movie.YearOfRelease)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("insert movie: %w", err)
	}

	if err := insertGenres(ctx, tx, movie.ID, movie.Genres); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create movie: %w", err)
	}
	return nil
}

// GetByID fetches a movie by identifier. userID, when non-nil, selects the
// caller's own rating alongside the global average.
func (r *MoviesRepository) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies m WHERE m.id = $2`, movieColumns)
	return r.getOne(ctx, query, userID, id)
}

// GetBySlug fetches a movie by its derived slug.
func (r *MoviesRepository) GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies m WHERE m.slug = $2`, movieColumns)
	return r.getOne(ctx, query, userID, slug)
}

func (r *MoviesRepository) getOne(ctx context.Context, query string, userID *uuid.UUID, key any) (domain.Movie, error) {
	row := r.pool.QueryRow(ctx, query, userID, key)
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// GetAll returns the filtered, sorted page of movies described by options.
// The title filter is case-insensitive containment (ILIKE); the year filter
// is an exact match. An unset sort yields a stable id order, and every
// recognized sort is tie-broken by id so pagination windows never overlap.
func (r *MoviesRepository) GetAll(ctx context.Context, options domain.GetAllMoviesOptions) ([]domain.Movie, error) {
	args := []any{options.UserID}
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	var where []string
	if options.Title != nil && strings.TrimSpace(*options.Title) != "" {
		where = append(where, fmt.Sprintf("m.title ILIKE %s", arg("%"+strings.TrimSpace(*options.Title)+"%")))
	}
	if options.YearOfRelease != nil {
		where = append(where, fmt.Sprintf("m.yearofrelease = %s", arg(*options.YearOfRelease)))
	}

	var query strings.Builder
	query.WriteString("SELECT ")
	query.WriteString(movieColumns)
	query.WriteString(" FROM movies m")
	if len(where) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(where, " AND "))
	}
	query.WriteString(orderClause(options))
	query.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", options.PageSize, (options.Page-1)*options.PageSize))

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0, options.PageSize)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie row: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// GetCount counts the movies matching the listing filters.
func (r *MoviesRepository) GetCount(ctx context.Context, title *string, yearOfRelease *int) (int, error) {
	var args []any
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	var where []string
	if title != nil && strings.TrimSpace(*title) != "" {
		where = append(where, fmt.Sprintf("title ILIKE %s", arg("%"+strings.TrimSpace(*title)+"%")))
	}
	if yearOfRelease != nil {
		where = append(where, fmt.Sprintf("yearofrelease = %s", arg(*yearOfRelease)))
	}

	query := "SELECT count(id) FROM movies"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// Update rewrites title, year and slug and wholly replaces the genre set
// inside one transaction. ErrNotFound if no movie row matched; nothing is
// written in that case.
func (r *MoviesRepository) Update(ctx context.Context, movie domain.Movie) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update movie: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        UPDATE movies
        SET slug = $2, title = $3, yearofrelease = $4
        WHERE id = $1
    `, movie.ID, movie.Slug(), movie.Title, movie.YearOfRelease)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("update movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, movie.ID); err != nil {
		return fmt.Errorf("clear genres: %w", err)
	}
	if err := insertGenres(ctx, tx, movie.ID, movie.Genres); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update movie: %w", err)
	}
	return nil
}

// Delete removes the dependent genre rows and then the movie row inside one
// transaction. ErrNotFound if the movie did not exist. Rating rows are left
// to the foreign-key constraint: deleting a rated movie surfaces a storage
// fault rather than silently dropping rating history.
func (r *MoviesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete movie: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM genres WHERE movieid = $1`, id); err != nil {
		return fmt.Errorf("delete genres: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete movie: %w", err)
	}
	return nil
}

// Exists probes for a movie id without loading the entity.
func (r *MoviesRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT exists(SELECT 1 FROM movies WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("movie exists: %w", err)
	}
	return exists, nil
}

func insertGenres(ctx context.Context, tx pgx.Tx, movieID uuid.UUID, genres []string) error {
	for _, genre := range genres {
		if _, err := tx.Exec(ctx, `
            INSERT INTO genres (movieid, name)
            VALUES ($1, $2)
        `, movieID, genre); err != nil {
			return fmt.Errorf("insert genre %q: %w", genre, err)
		}
	}
	return nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie      domain.Movie
		slug       string
		rating     *float64
		userRating *int
	)
	if err := row.Scan(&movie.ID, &slug, &movie.Title, &movie.YearOfRelease, &movie.Genres, &rating, &userRating); err != nil {
		return domain.Movie{}, err
	}
	movie.Rating = rating
	movie.UserRating = userRating
	return movie, nil
}

func orderClause(options domain.GetAllMoviesOptions) string {
	column, ok := sortColumns[strings.ToLower(options.SortField)]
	if !ok || options.SortOrder == domain.SortOrderUnsorted {
		return " ORDER BY m.id ASC"
	}
	direction := "ASC"
	if options.SortOrder == domain.SortOrderDescending {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, m.id ASC", column, direction)
}
