// Package httpapi exposes the presenter over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lyricdeck/internal/app/presenter"
	"lyricdeck/internal/auth"
	"lyricdeck/internal/http/middleware"
	"lyricdeck/internal/logging"
)

// maxBodyBytes bounds request bodies, imported state files included.
const maxBodyBytes = 8 << 20

// Server wires HTTP handlers to the presenter.
type Server struct {
	presenter presenter.Service
	auth      *auth.Authenticator
	displays  http.Handler
	logger    *logging.Logger
}

// New configures a Server. displays serves the presentation websocket and
// may be nil.
func New(svc presenter.Service, authenticator *auth.Authenticator, displays http.Handler, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		presenter: svc,
		auth:      authenticator,
		displays:  displays,
		logger:    logger,
	}
}

// Routes exposes the HTTP handlers behind request logging, panic recovery
// and CORS for allowedOrigins.
func (s *Server) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.CORS(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Get("/state", s.handleExportState)
		r.Get("/theme", s.handleGetTheme)

		r.Get("/songs", s.handleListSongs)
		r.Get("/songs/{id}", s.handleGetSong)
		r.Get("/songs/{id}/text", s.handleSongText)

		r.Get("/playlists", s.handleListPlaylists)
		r.Get("/playlists/{id}", s.handleGetPlaylist)
		r.Get("/playlists/{id}/slides", s.handleSlides)

		r.Get("/current", s.handleGetCurrent)

		if s.displays != nil {
			r.Handle("/present/ws", s.displays)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.requireOperator)

			r.Post("/state", s.handleMergeState)
			r.Put("/theme", s.handleSetTheme)

			r.Post("/songs/import", s.handleImport)
			r.Put("/songs/{id}", s.handleUpdateSong)
			r.Delete("/songs/{id}", s.handleDeleteSong)

			r.Post("/playlists", s.handleCreatePlaylist)
			r.Put("/playlists/{id}", s.handleRenamePlaylist)
			r.Delete("/playlists/{id}", s.handleDeletePlaylist)
			r.Post("/playlists/{id}/duplicate", s.handleDuplicatePlaylist)
			r.Post("/playlists/{id}/entries", s.handleAddEntry)
			r.Put("/playlists/{id}/entries/{index}", s.handleUpdateEntry)
			r.Delete("/playlists/{id}/entries/{index}", s.handleRemoveEntry)
			r.Post("/playlists/{id}/entries/{index}/move", s.handleMoveEntry)

			r.Put("/current", s.handleSetCurrent)
			r.Delete("/current", s.handleClearCurrent)
			r.Post("/current/next", s.handleNext)
			r.Post("/current/previous", s.handlePrevious)
		})
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type idResponse struct {
	ID uint32 `json:"id"`
}

// writeError maps service errors to a status code. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.WithContext(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, presenter.ErrSongNotFound),
		errors.Is(err, presenter.ErrPlaylistNotFound),
		errors.Is(err, presenter.ErrEntryNotFound),
		errors.Is(err, presenter.ErrSlideNotFound):
		return http.StatusNotFound
	case errors.Is(err, presenter.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, presenter.ErrNoSelection):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint32, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return 0, false
	}
	return uint32(id), true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entry index"})
		return 0, false
	}
	return index, true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
