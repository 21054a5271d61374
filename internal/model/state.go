// Package model owns the song and playlist catalogs and expands playlists
// into addressable slides.
package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"lyricdeck/internal/openlyrics"
)

// RemovedSongText replaces playlist entries whose song was removed.
const RemovedSongText = "Song removed"

// DefaultPlaylistName names the playlist present in a new state.
const DefaultPlaylistName = "Playlist"

// Theme is the presentation styling shared by every slide.
type Theme struct {
	HeadingSize      uint32 `json:"heading_size"`
	BodySize         uint32 `json:"body_size"`
	HeadingColour    string `json:"heading_colour"`
	BodyColour       string `json:"body_colour"`
	BackgroundColour string `json:"background_colour"`
	FontFamily       string `json:"font_family"`
}

// DefaultTheme returns black sans-serif text on white.
func DefaultTheme() Theme {
	return Theme{
		HeadingSize:      5,
		BodySize:         4,
		HeadingColour:    "#000000",
		BodyColour:       "#000000",
		BackgroundColour: "#ffffff",
		FontFamily:       "sans-serif",
	}
}

// State owns the song catalog, the playlist catalog and the theme. Songs
// are treated as immutable once stored; edits replace the whole value.
type State struct {
	songs     map[uint32]openlyrics.Song
	playlists map[uint32]Playlist
	theme     Theme
}

// SongListing pairs a song with its catalog id.
type SongListing struct {
	ID   uint32
	Song openlyrics.Song
}

// PlaylistListing pairs a playlist with its id.
type PlaylistListing struct {
	ID       uint32
	Playlist Playlist
}

// NewState returns a state with one empty playlist and the default theme.
func NewState() *State {
	s := newEmptyState()
	s.playlists[0] = NewPlaylist(DefaultPlaylistName)
	return s
}

func newEmptyState() *State {
	return &State{
		songs:     make(map[uint32]openlyrics.Song),
		playlists: make(map[uint32]Playlist),
		theme:     DefaultTheme(),
	}
}

// RestoreState builds a state from previously persisted catalogs, keeping
// their ids.
func RestoreState(songs map[uint32]openlyrics.Song, playlists map[uint32]Playlist, theme Theme) *State {
	s := newEmptyState()
	for id, song := range songs {
		s.songs[id] = song
	}
	for id, playlist := range playlists {
		s.playlists[id] = playlist.clone()
	}
	s.theme = theme
	return s
}

// Clone returns a copy that can be mutated without affecting s.
func (s *State) Clone() *State {
	out := &State{
		songs:     make(map[uint32]openlyrics.Song, len(s.songs)),
		playlists: make(map[uint32]Playlist, len(s.playlists)),
		theme:     s.theme,
	}
	for id, song := range s.songs {
		out.songs[id] = song
	}
	for id, playlist := range s.playlists {
		out.playlists[id] = playlist.clone()
	}
	return out
}

// Song returns the song with the given id.
func (s *State) Song(id uint32) (openlyrics.Song, bool) {
	song, ok := s.songs[id]
	return song, ok
}

// Playlist returns a copy of the playlist with the given id.
func (s *State) Playlist(id uint32) (Playlist, bool) {
	playlist, ok := s.playlists[id]
	if !ok {
		return Playlist{}, false
	}
	return playlist.clone(), true
}

// Theme returns the presentation theme.
func (s *State) Theme() Theme {
	return s.theme
}

// SetTheme replaces the presentation theme.
func (s *State) SetTheme(theme Theme) {
	s.theme = theme
}

// SongCount returns the number of songs in the catalog.
func (s *State) SongCount() int {
	return len(s.songs)
}

// AddSong stores song and returns its id. A structurally equal song already
// in the catalog is reused instead of stored twice.
func (s *State) AddSong(song openlyrics.Song) uint32 {
	for _, id := range sortedKeys(s.songs) {
		if openlyrics.Equal(s.songs[id], song) {
			return id
		}
	}
	id := nextID(s.songs)
	s.songs[id] = song
	return id
}

// UpdateSong replaces the song stored under id.
func (s *State) UpdateSong(id uint32, song openlyrics.Song) bool {
	if _, ok := s.songs[id]; !ok {
		return false
	}
	s.songs[id] = song
	return true
}

// RemoveSong deletes a song, first rewriting every playlist entry that
// references it to a RemovedSongText placeholder.
func (s *State) RemoveSong(id uint32) {
	for playlistID, playlist := range s.playlists {
		changed := false
		for i, entry := range playlist.Entries {
			if entry == (SongEntry{SongID: id}) {
				playlist.Entries[i] = TextEntry(RemovedSongText)
				changed = true
			}
		}
		if changed {
			s.playlists[playlistID] = playlist
		}
	}
	delete(s.songs, id)
}

// SongsByTitle lists all songs sorted by primary title, ties broken by id.
func (s *State) SongsByTitle() []SongListing {
	listings := make([]SongListing, 0, len(s.songs))
	for _, id := range sortedKeys(s.songs) {
		listings = append(listings, SongListing{ID: id, Song: s.songs[id]})
	}
	slices.SortStableFunc(listings, func(a, b SongListing) int {
		return strings.Compare(TitleForSong(a.Song), TitleForSong(b.Song))
	})
	return listings
}

// AddPlaylist stores a copy of playlist and returns its new id.
func (s *State) AddPlaylist(playlist Playlist) uint32 {
	id := nextID(s.playlists)
	s.playlists[id] = playlist.clone()
	return id
}

// Playlists lists all playlists ordered by id.
func (s *State) Playlists() []PlaylistListing {
	listings := make([]PlaylistListing, 0, len(s.playlists))
	for _, id := range sortedKeys(s.playlists) {
		listings = append(listings, PlaylistListing{ID: id, Playlist: s.playlists[id].clone()})
	}
	return listings
}

// FirstPlaylistID returns the lowest playlist id.
func (s *State) FirstPlaylistID() (uint32, bool) {
	if len(s.playlists) == 0 {
		return 0, false
	}
	return lo.Min(lo.Keys(s.playlists)), true
}

// RenamePlaylist changes a playlist's name.
func (s *State) RenamePlaylist(id uint32, name string) bool {
	playlist, ok := s.playlists[id]
	if !ok {
		return false
	}
	playlist.Name = name
	s.playlists[id] = playlist
	return true
}

// DuplicatePlaylist copies a playlist under a new name and returns the copy's id.
func (s *State) DuplicatePlaylist(id uint32, name string) (uint32, bool) {
	playlist, ok := s.playlists[id]
	if !ok {
		return 0, false
	}
	playlist = playlist.clone()
	playlist.Name = name
	return s.AddPlaylist(playlist), true
}

// RemovePlaylist deletes a playlist.
func (s *State) RemovePlaylist(id uint32) bool {
	if _, ok := s.playlists[id]; !ok {
		return false
	}
	delete(s.playlists, id)
	return true
}

// Merge imports other into s. Songs are added through AddSong and playlist
// references remapped to the resulting ids; playlists equal to an existing
// one are skipped; other's theme replaces s's.
func (s *State) Merge(other *State) {
	mapping := make(map[uint32]uint32, len(other.songs))
	for _, id := range sortedKeys(other.songs) {
		mapping[id] = s.AddSong(other.songs[id])
	}

	for _, id := range sortedKeys(other.playlists) {
		playlist := other.playlists[id].clone()
		for i, entry := range playlist.Entries {
			songEntry, ok := entry.(SongEntry)
			if !ok {
				continue
			}
			if newID, ok := mapping[songEntry.SongID]; ok {
				playlist.Entries[i] = SongEntry{SongID: newID}
			} else {
				playlist.Entries[i] = TextEntry(fmt.Sprintf("Invalid song ID %d", songEntry.SongID))
			}
		}

		duplicate := lo.SomeBy(lo.Values(s.playlists), func(existing Playlist) bool {
			return existing.Equal(playlist)
		})
		if !duplicate {
			s.AddPlaylist(playlist)
		}
	}

	s.theme = other.theme
}

// AppendEntry adds an entry to the end of a playlist and returns its index.
// Song entries must reference a song in the catalog.
func (s *State) AppendEntry(playlistID uint32, entry PlaylistEntry) (SlideIndex, bool) {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return SlideIndex{}, false
	}
	if songEntry, isSong := entry.(SongEntry); isSong {
		if _, known := s.songs[songEntry.SongID]; !known {
			return SlideIndex{}, false
		}
	}
	playlist.Entries = append(playlist.Entries, entry)
	s.playlists[playlistID] = playlist
	return SlideIndex{PlaylistID: playlistID, EntryIndex: len(playlist.Entries) - 1}, true
}

// UpdateTextEntry replaces the text of the text entry at idx.
func (s *State) UpdateTextEntry(idx SlideIndex, text string) bool {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok {
		return false
	}
	entry, ok := playlist.Entry(idx.EntryIndex)
	if !ok {
		return false
	}
	if _, isText := entry.(TextEntry); !isText {
		return false
	}
	playlist.Entries[idx.EntryIndex] = TextEntry(text)
	return true
}

// RemoveEntry deletes the entry idx points at. The returned selection is nil
// when the playlist is left empty, otherwise idx clamped to the remaining
// entries with the page reset to 0.
func (s *State) RemoveEntry(idx SlideIndex) (selection *SlideIndex, removed bool) {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok {
		return nil, false
	}
	if _, ok := playlist.Entry(idx.EntryIndex); !ok {
		return nil, false
	}
	playlist.Entries = slices.Delete(playlist.Entries, idx.EntryIndex, idx.EntryIndex+1)
	s.playlists[idx.PlaylistID] = playlist

	if len(playlist.Entries) == 0 {
		return nil, true
	}
	next := SlideIndex{PlaylistID: idx.PlaylistID, EntryIndex: min(idx.EntryIndex, len(playlist.Entries)-1)}
	return &next, true
}

// MoveEntry moves the entry idx points at by offset and returns the index
// that follows it to its new position.
func (s *State) MoveEntry(idx SlideIndex, offset int) (SlideIndex, bool) {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok || !playlist.MoveEntryIndex(idx.EntryIndex, offset) {
		return idx, false
	}
	idx.EntryIndex += offset
	return idx, true
}

type stateJSON struct {
	Songs     map[uint32]openlyrics.Song `json:"songs"`
	Playlists map[uint32]Playlist        `json:"playlists"`
	Theme     Theme                      `json:"theme"`
}

func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{Songs: s.songs, Playlists: s.playlists, Theme: s.theme})
}

// UnmarshalJSON decodes a state. Missing catalogs decode empty and missing
// theme fields keep their defaults.
func (s *State) UnmarshalJSON(data []byte) error {
	raw := stateJSON{Theme: DefaultTheme()}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := newEmptyState()
	for id, song := range raw.Songs {
		out.songs[id] = song
	}
	for id, playlist := range raw.Playlists {
		out.playlists[id] = playlist
	}
	out.theme = raw.Theme
	*s = *out
	return nil
}

func nextID[V any](m map[uint32]V) uint32 {
	if len(m) == 0 {
		return 0
	}
	return lo.Max(lo.Keys(m)) + 1
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
