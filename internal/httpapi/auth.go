package httpapi

import (
	"net/http"
	"time"

	"lyricdeck/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.writeError(w, r, auth.ErrDisabled)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, expires, err := s.auth.Login(req.Password)
	if err != nil {
		s.logger.WithContext(r.Context()).Warn().Err(err).Msg("operator login rejected")
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires})
}

// requireOperator rejects requests without a valid operator token. It lets
// everything through when authentication is disabled.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil || !s.auth.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := parseBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		if _, err := s.auth.Verify(token); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
