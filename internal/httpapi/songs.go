package httpapi

import (
	"errors"
	"io"
	"net/http"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

type songSummary struct {
	ID       uint32 `json:"id"`
	Title    string `json:"title"`
	Authors  string `json:"authors,omitempty"`
	Songbook string `json:"songbook,omitempty"`
}

type songResponse struct {
	ID   uint32          `json:"id"`
	Song openlyrics.Song `json:"song"`
}

type importResponse struct {
	SongID *uint32 `json:"song_id"`
}

func summarizeSong(listing model.SongListing) songSummary {
	summary := songSummary{
		ID:      listing.ID,
		Title:   model.TitleForSong(listing.Song),
		Authors: model.AuthorsAsString(listing.Song),
	}
	if songbook, ok := model.FirstSongbook(listing.Song); ok {
		summary.Songbook = songbook
	}
	return summary
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	listings, err := s.presenter.ListSongs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	songs := make([]songSummary, 0, len(listings))
	for _, listing := range listings {
		songs = append(songs, summarizeSong(listing))
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []songSummary `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	song, err := s.presenter.Song(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponse{ID: id, Song: song})
}

// handleSongText returns the lyrics in the editable text layout.
func (s *Server) handleSongText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	song, err := s.presenter.Song(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, model.LyricsAsText(song))
}

// handleImport reads a state, OpenLyrics or text file from the request body.
// The filename query parameter selects the format.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "filename is required"})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}

	songID, err := s.presenter.ImportFile(r.Context(), filename, raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{SongID: songID})
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var song openlyrics.Song
	if !decodeJSON(w, r, &song) {
		return
	}
	if err := s.presenter.UpdateSong(r.Context(), id, song); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songResponse{ID: id, Song: song})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.presenter.RemoveSong(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
