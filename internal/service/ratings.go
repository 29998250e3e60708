package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/filmgrid/movies-api/internal/validation"
)

// RatingService guards the rating upsert: out-of-range values are rejected
// before storage is touched, and a missing movie reports false rather than
// an error.
type RatingService struct {
	ratings   RatingStore
	movies    MovieStore
	validator *validation.Validator
}

// NewRatingService wires the service with its collaborators.
func NewRatingService(ratings RatingStore, movies MovieStore, validator *validation.Validator) *RatingService {
	return &RatingService{ratings: ratings, movies: movies, validator: validator}
}

// RateMovie records the caller's rating for a movie. Returns false without
// mutation when the movie does not exist.
func (s *RatingService) RateMovie(ctx context.Context, movieID uuid.UUID, rating int, userID uuid.UUID) (bool, error) {
	if err := s.validator.ValidateRating(rating); err != nil {
		return false, err
	}

	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return false, fmt.Errorf("check movie exists: %w", err)
	}
	if !exists {
		return false, nil
	}

	if err := s.ratings.Upsert(ctx, movieID, userID, rating); err != nil {
		return false, err
	}
	return true, nil
}
