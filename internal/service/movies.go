// Package service orchestrates validation, repository calls and rating
// merging. Services hold no state beyond their injected collaborators and
// are safe for concurrent use.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/filmgrid/movies-api/internal/domain"
	"github.com/filmgrid/movies-api/internal/repository"
	"github.com/filmgrid/movies-api/internal/validation"
)

// MovieStore is the persistence contract the movie service depends on,
// satisfied by repository.MoviesRepository.
type MovieStore interface {
	Create(ctx context.Context, movie domain.Movie) error
	GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error)
	GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (domain.Movie, error)
	GetAll(ctx context.Context, options domain.GetAllMoviesOptions) ([]domain.Movie, error)
	GetCount(ctx context.Context, title *string, yearOfRelease *int) (int, error)
	Update(ctx context.Context, movie domain.Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// RatingStore is the persistence contract for ratings, satisfied by
// repository.RatingsRepository.
type RatingStore interface {
	GetGlobalRating(ctx context.Context, movieID uuid.UUID) (*float64, error)
	GetRatingPair(ctx context.Context, movieID uuid.UUID, userID *uuid.UUID) (*float64, *int, error)
	Upsert(ctx context.Context, movieID, userID uuid.UUID, rating int) error
}

// MovieService validates movie entities and query options before delegating
// to the stores, and re-attaches rating data on the update path.
type MovieService struct {
	movies    MovieStore
	ratings   RatingStore
	validator *validation.Validator
}

// NewMovieService wires the service with its collaborators.
func NewMovieService(movies MovieStore, ratings RatingStore, validator *validation.Validator) *MovieService {
	return &MovieService{movies: movies, ratings: ratings, validator: validator}
}

// Create validates the movie and persists it with its initial genre set.
func (s *MovieService) Create(ctx context.Context, movie domain.Movie) error {
	if err := s.validator.ValidateMovie(movie); err != nil {
		return err
	}
	return s.movies.Create(ctx, movie)
}

// GetByID fetches a movie by id, personalized when userID is known.
func (s *MovieService) GetByID(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (domain.Movie, error) {
	return s.movies.GetByID(ctx, id, userID)
}

// GetBySlug fetches a movie by its derived slug.
func (s *MovieService) GetBySlug(ctx context.Context, slug string, userID *uuid.UUID) (domain.Movie, error) {
	return s.movies.GetBySlug(ctx, slug, userID)
}

// GetAll validates the query options and returns the matching page.
func (s *MovieService) GetAll(ctx context.Context, options domain.GetAllMoviesOptions) ([]domain.Movie, error) {
	if err := s.validator.ValidateOptions(options); err != nil {
		return nil, err
	}
	return s.movies.GetAll(ctx, options)
}

// GetCount counts the movies matching the listing filters.
func (s *MovieService) GetCount(ctx context.Context, title *string, yearOfRelease *int) (int, error) {
	return s.movies.GetCount(ctx, title, yearOfRelease)
}

// Update validates the movie, checks existence, persists the new state and
// attaches rating data: the global average always, the caller's own rating
// when the caller is known.
func (s *MovieService) Update(ctx context.Context, movie domain.Movie, userID *uuid.UUID) (domain.Movie, error) {
	if err := s.validator.ValidateMovie(movie); err != nil {
		return domain.Movie{}, err
	}

	exists, err := s.movies.Exists(ctx, movie.ID)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("check movie exists: %w", err)
	}
	if !exists {
		return domain.Movie{}, repository.ErrNotFound
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		return domain.Movie{}, err
	}

	if userID == nil {
		rating, err := s.ratings.GetGlobalRating(ctx, movie.ID)
		if err != nil {
			return domain.Movie{}, fmt.Errorf("attach rating: %w", err)
		}
		movie.Rating = rating
		return movie, nil
	}

	rating, userRating, err := s.ratings.GetRatingPair(ctx, movie.ID, userID)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("attach ratings: %w", err)
	}
	movie.Rating = rating
	movie.UserRating = userRating
	return movie, nil
}

// Delete removes a movie; the repository's ErrNotFound communicates absence.
func (s *MovieService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.movies.Delete(ctx, id)
}
