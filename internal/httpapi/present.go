package httpapi

import (
	"net/http"

	"lyricdeck/internal/app/presenter"
	"lyricdeck/internal/model"
)

type currentRequest struct {
	Index *model.SlideIndex `json:"index"`
}

func (s *Server) handleExportState(w http.ResponseWriter, r *http.Request) {
	state, err := s.presenter.State(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="lyricdeck.json"`)
	writeJSON(w, http.StatusOK, state)
}

// handleMergeState merges an exported state into the current one.
func (s *Server) handleMergeState(w http.ResponseWriter, r *http.Request) {
	other := &model.State{}
	if !decodeJSON(w, r, other) {
		return
	}
	if err := s.presenter.Merge(r.Context(), other); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	state, err := s.presenter.State(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state.Theme())
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var theme model.Theme
	if !decodeJSON(w, r, &theme) {
		return
	}
	if err := s.presenter.SetTheme(r.Context(), theme); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	current, err := s.presenter.Current(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req currentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.writeCurrent(w, r, func() (presenter.Current, error) {
		return s.presenter.SetCurrent(r.Context(), req.Index)
	})
}

func (s *Server) handleClearCurrent(w http.ResponseWriter, r *http.Request) {
	s.writeCurrent(w, r, func() (presenter.Current, error) {
		return s.presenter.SetCurrent(r.Context(), nil)
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.writeCurrent(w, r, func() (presenter.Current, error) {
		return s.presenter.Next(r.Context())
	})
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.writeCurrent(w, r, func() (presenter.Current, error) {
		return s.presenter.Previous(r.Context())
	})
}

func (s *Server) writeCurrent(w http.ResponseWriter, r *http.Request, fn func() (presenter.Current, error)) {
	current, err := fn()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}
