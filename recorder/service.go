package recorder

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Service exposes the session store over HTTP. User identity is taken from
// a trusted header set by the authenticating front end; requests without
// it are rejected.
type Service struct {
	store      *Store
	userHeader string
	router     *mux.Router
}

type incrementRequest struct {
	CourseID int   `json:"courseid"`
	Startts  int64 `json:"startts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewService wires the HTTP routes for the given store.
func NewService(store *Store, userHeader string) *Service {
	s := &Service{
		store:      store,
		userHeader: userHeader,
		router:     mux.NewRouter(),
	}

	api := s.router.PathPrefix("/api/sessions").Subrouter()
	api.Use(s.requireUser)
	api.HandleFunc("/increment", s.handleIncrement).Methods(http.MethodPost)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	return s
}

// Handler returns the root HTTP handler for the service.
func (s *Service) Handler() http.Handler {
	return s.router
}

// requireUser rejects requests lacking the trusted identity header.
func (s *Service) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(s.userHeader) == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: "missing user identity",
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleIncrement(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "malformed request body",
		})

		return
	}

	if req.CourseID < 0 || req.Startts <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "courseid and startts must be valid",
		})

		return
	}

	userID := r.Header.Get(s.userHeader)

	st, err := s.store.Increment(req.CourseID, userID, req.Startts)
	if err != nil {
		slog.Error(
			"incrementing session failed",
			slog.Int("courseid", req.CourseID),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "failed to record session",
		})

		return
	}

	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.Atoi(r.URL.Query().Get("courseid"))
	if err != nil || courseID < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "courseid must be a non-negative integer",
		})

		return
	}

	userID := r.Header.Get(s.userHeader)

	st, err := s.store.Get(courseID, userID)
	if err != nil {
		slog.Error(
			"reading session status failed",
			slog.Int("courseid", courseID),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "failed to read session status",
		})

		return
	}

	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", slog.Any("error", err))
	}
}
