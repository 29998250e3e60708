package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/filmgrid/movies-api/internal/auth"
	"github.com/filmgrid/movies-api/internal/domain"
	"github.com/filmgrid/movies-api/internal/repository"
	"github.com/filmgrid/movies-api/internal/validation"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type movieRequest struct {
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

type movieResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	YearOfRelease int       `json:"yearOfRelease"`
	Genres        []string  `json:"genres"`
	Rating        *float64  `json:"rating,omitempty"`
	UserRating    *int      `json:"userRating,omitempty"`
}

type moviesResponse struct {
	Items       []movieResponse `json:"items"`
	Page        int             `json:"page"`
	PageSize    int             `json:"pageSize"`
	Total       int             `json:"total"`
	HasNextPage bool            `json:"hasNextPage"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	options, err := buildListOptions(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		options.UserID = &userID
	}

	movies, err := s.movies.GetAll(r.Context(), options)
	if err != nil {
		s.respondServiceError(w, err, "list movies")
		return
	}
	total, err := s.movies.GetCount(r.Context(), options.Title, options.YearOfRelease)
	if err != nil {
		s.respondServiceError(w, err, "count movies")
		return
	}

	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}

	s.respondJSON(w, http.StatusOK, moviesResponse{
		Items:       items,
		Page:        options.Page,
		PageSize:    options.PageSize,
		Total:       total,
		HasNextPage: options.Page*options.PageSize < total,
	})
}

// buildListOptions parses filter, sort and paging parameters. A leading '-'
// on sortBy requests descending order.
func buildListOptions(query url.Values) (domain.GetAllMoviesOptions, error) {
	options := domain.GetAllMoviesOptions{
		Page:     defaultPage,
		PageSize: defaultPageSize,
	}

	if title := strings.TrimSpace(query.Get("title")); title != "" {
		options.Title = &title
	}
	if val := strings.TrimSpace(query.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return options, fmt.Errorf("invalid year value")
		}
		options.YearOfRelease = &year
	}
	if sortBy := strings.TrimSpace(query.Get("sortBy")); sortBy != "" {
		if strings.HasPrefix(sortBy, "-") {
			options.SortField = strings.TrimPrefix(sortBy, "-")
			options.SortOrder = domain.SortOrderDescending
		} else {
			options.SortField = sortBy
			options.SortOrder = domain.SortOrderAscending
		}
	}
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		page, err := strconv.Atoi(val)
		if err != nil {
			return options, fmt.Errorf("invalid page value")
		}
		options.Page = page
	}
	if val := strings.TrimSpace(query.Get("pageSize")); val != "" {
		pageSize, err := strconv.Atoi(val)
		if err != nil {
			return options, fmt.Errorf("invalid pageSize value")
		}
		options.PageSize = pageSize
	}
	return options, nil
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")

	var userID *uuid.UUID
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	var (
		movie domain.Movie
		err   error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		movie, err = s.movies.GetByID(r.Context(), id, userID)
	} else {
		movie, err = s.movies.GetBySlug(r.Context(), idOrSlug, userID)
	}
	if err != nil {
		s.respondServiceError(w, err, "get movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie := domain.Movie{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(req.Title),
		YearOfRelease: req.YearOfRelease,
		Genres:        req.Genres,
	}
	if err := s.movies.Create(r.Context(), movie); err != nil {
		s.respondServiceError(w, err, "create movie")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/movies/%s", movie.ID))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	var req movieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	var userID *uuid.UUID
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		userID = &uid
	}

	movie := domain.Movie{
		ID:            id,
		Title:         strings.TrimSpace(req.Title),
		YearOfRelease: req.YearOfRelease,
		Genres:        req.Genres,
	}
	updated, err := s.movies.Update(r.Context(), movie, userID)
	if err != nil {
		s.respondServiceError(w, err, "update movie")
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(updated))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}
	if err := s.movies.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, err, "delete movie")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// respondServiceError maps service and repository errors to HTTP responses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, operation string) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "The request failed validation",
			Details: vErr.Violations,
		})
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, repository.ErrDuplicateSlug):
		s.respondError(w, http.StatusConflict, "CONFLICT", "A movie with the same title and year already exists")
	default:
		s.logger.Error(operation+" failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Unable to parse request body")
	}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	genres := movie.Genres
	if genres == nil {
		genres = []string{}
	}
	return movieResponse{
		ID:            movie.ID,
		Title:         movie.Title,
		Slug:          movie.Slug(),
		YearOfRelease: movie.YearOfRelease,
		Genres:        genres,
		Rating:        movie.Rating,
		UserRating:    movie.UserRating,
	}
}
