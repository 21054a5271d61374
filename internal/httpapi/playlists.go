package httpapi

import (
	"net/http"

	"lyricdeck/internal/model"
)

type playlistSummary struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

type playlistResponse struct {
	ID       uint32         `json:"id"`
	Playlist model.Playlist `json:"playlist"`
}

type playlistRequest struct {
	Name string `json:"name"`
}

// entryRequest adds either a song or a text entry.
type entryRequest struct {
	SongID *uint32 `json:"song_id"`
	Text   *string `json:"text"`
}

type textRequest struct {
	Text string `json:"text"`
}

type moveRequest struct {
	Offset int `json:"offset"`
}

type indexResponse struct {
	Index model.SlideIndex `json:"index"`
}

// slideResponse flattens a model.Slide for clients.
type slideResponse struct {
	Index           model.SlideIndex `json:"index"`
	Kind            string           `json:"kind"`
	SongID          *uint32          `json:"song_id,omitempty"`
	LyricEntryIndex *int             `json:"lyric_entry_index,omitempty"`
	LinesIndex      *int             `json:"lines_index,omitempty"`
	LastPage        bool             `json:"last_page,omitempty"`
	Preview         string           `json:"preview"`
}

func describeSlide(state *model.State, indexed model.IndexedSlide) slideResponse {
	resp := slideResponse{
		Index:   indexed.Index,
		Preview: model.SlideText(state, indexed.Slide),
	}
	switch sl := indexed.Slide.(type) {
	case model.SongStart:
		resp.Kind = "song_start"
		resp.SongID = &sl.SongID
	case model.Lyrics:
		resp.Kind = "lyrics"
		resp.SongID = &sl.SongID
		resp.LyricEntryIndex = &sl.LyricEntryIndex
		resp.LinesIndex = &sl.LinesIndex
		resp.LastPage = sl.LastPage
	case model.Text:
		resp.Kind = "text"
	}
	return resp
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	listings, err := s.presenter.Playlists(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	playlists := make([]playlistSummary, 0, len(listings))
	for _, listing := range listings {
		playlists = append(playlists, playlistSummary{
			ID:      listing.ID,
			Name:    listing.Playlist.Name,
			Entries: len(listing.Playlist.Entries),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Playlists []playlistSummary `json:"playlists"`
	}{Playlists: playlists})
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	playlist, err := s.presenter.Playlist(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistResponse{ID: id, Playlist: playlist})
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id, err := s.presenter.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleRenamePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req playlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.presenter.RenamePlaylist(r.Context(), id, req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDuplicatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req playlistRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	copyID, err := s.presenter.DuplicatePlaylist(r.Context(), id, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: copyID})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.presenter.DeletePlaylist(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSlides(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	slides, err := s.presenter.Slides(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	state, err := s.presenter.State(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]slideResponse, 0, len(slides))
	for _, indexed := range slides {
		resp = append(resp, describeSlide(state, indexed))
	}
	writeJSON(w, http.StatusOK, struct {
		Slides []slideResponse `json:"slides"`
	}{Slides: resp})
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if (req.SongID == nil) == (req.Text == nil) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "exactly one of song_id and text is required"})
		return
	}

	var (
		idx model.SlideIndex
		err error
	)
	if req.SongID != nil {
		idx, err = s.presenter.AddSongToPlaylist(r.Context(), id, *req.SongID)
	} else {
		idx, err = s.presenter.AddText(r.Context(), id, *req.Text)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, indexResponse{Index: idx})
}

func (s *Server) entryIndex(w http.ResponseWriter, r *http.Request) (model.SlideIndex, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return model.SlideIndex{}, false
	}
	index, ok := pathIndex(w, r)
	if !ok {
		return model.SlideIndex{}, false
	}
	return model.SlideIndex{PlaylistID: id, EntryIndex: index}, true
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.entryIndex(w, r)
	if !ok {
		return
	}
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.presenter.UpdateText(r.Context(), idx, req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.entryIndex(w, r)
	if !ok {
		return
	}
	if err := s.presenter.RemoveEntry(r.Context(), idx); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMoveEntry(w http.ResponseWriter, r *http.Request) {
	idx, ok := s.entryIndex(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	moved, err := s.presenter.MoveEntry(r.Context(), idx, req.Offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{Index: moved})
}
