package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/filmgrid/movies-api/internal/auth"
)

type rateMovieRequest struct {
	Rating int `json:"rating"`
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid movie id")
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// RequireUser guards the route, an anonymous request cannot reach here.
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req rateMovieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	rated, err := s.ratings.RateMovie(r.Context(), movieID, req.Rating, userID)
	if err != nil {
		s.respondServiceError(w, err, "rate movie")
		return
	}
	if !rated {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
