// Package presenter owns the live presentation: the state being edited and
// the slide currently on screen.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"lyricdeck/internal/importer"
	"lyricdeck/internal/logging"
	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
	"lyricdeck/internal/slide"
)

var (
	ErrSongNotFound     = errors.New("song not found")
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrEntryNotFound    = errors.New("playlist entry not found")
	ErrSlideNotFound    = errors.New("slide not found")
	// ErrNoSelection is returned when stepping with no slide selected.
	ErrNoSelection = errors.New("no slide selected")
	// ErrInvalidInput wraps rejected song, playlist or import data.
	ErrInvalidInput = errors.New("invalid input")
)

// Store captures the persistence needs of the presenter.
type Store interface {
	Load(ctx context.Context) (*model.State, error)
	Save(ctx context.Context, state *model.State) error
	SaveCurrent(ctx context.Context, idx *model.SlideIndex) error
	LoadCurrent(ctx context.Context) (*model.SlideIndex, error)
}

// Publisher delivers the content of the slide on screen to displays.
type Publisher interface {
	Publish(ctx context.Context, content slide.Content) error
}

// Current is the selected slide and its rendered content.
type Current struct {
	Index   *model.SlideIndex `json:"index"`
	Content slide.Content     `json:"content"`
}

// Service coordinates editing and presenting.
type Service interface {
	// State returns the current snapshot. Callers must not modify it.
	State(ctx context.Context) (*model.State, error)
	Merge(ctx context.Context, other *model.State) error
	SetTheme(ctx context.Context, theme model.Theme) error

	ListSongs(ctx context.Context, filter string) ([]model.SongListing, error)
	Song(ctx context.Context, id uint32) (openlyrics.Song, error)
	ImportFile(ctx context.Context, filename string, raw []byte) (*uint32, error)
	UpdateSong(ctx context.Context, id uint32, song openlyrics.Song) error
	RemoveSong(ctx context.Context, id uint32) error

	Playlists(ctx context.Context) ([]model.PlaylistListing, error)
	Playlist(ctx context.Context, id uint32) (model.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (uint32, error)
	RenamePlaylist(ctx context.Context, id uint32, name string) error
	DuplicatePlaylist(ctx context.Context, id uint32, name string) (uint32, error)
	DeletePlaylist(ctx context.Context, id uint32) error
	Slides(ctx context.Context, playlistID uint32) ([]model.IndexedSlide, error)

	AddSongToPlaylist(ctx context.Context, playlistID, songID uint32) (model.SlideIndex, error)
	AddText(ctx context.Context, playlistID uint32, text string) (model.SlideIndex, error)
	UpdateText(ctx context.Context, idx model.SlideIndex, text string) error
	RemoveEntry(ctx context.Context, idx model.SlideIndex) error
	MoveEntry(ctx context.Context, idx model.SlideIndex, offset int) (model.SlideIndex, error)

	Current(ctx context.Context) (Current, error)
	SetCurrent(ctx context.Context, idx *model.SlideIndex) (Current, error)
	Next(ctx context.Context) (Current, error)
	Previous(ctx context.Context) (Current, error)
}

// snapshot is never modified once published.
type snapshot struct {
	state   *model.State
	current *model.SlideIndex
}

type service struct {
	store     Store
	publisher Publisher
	logger    *logging.Logger

	// mu serializes writers; readers only load snap.
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

// Open loads the persisted state and selection and returns a Service
// presenting them. A stored selection that no longer resolves is dropped.
func Open(ctx context.Context, store Store, publisher Publisher, logger *logging.Logger) (Service, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	current, err := store.LoadCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current slide: %w", err)
	}
	if current != nil {
		if _, ok := state.Slide(*current); !ok {
			current = nil
		}
	}

	s := &service{store: store, publisher: publisher, logger: logger}
	s.snap.Store(&snapshot{state: state, current: current})
	s.publish(ctx, state, current)
	return s, nil
}

func (s *service) load(ctx context.Context) (*snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.snap.Load(), nil
}

// update runs fn against a private copy of the state and selection, then
// persists and publishes the result. Nothing is published when fn fails.
func (s *service) update(ctx context.Context, fn func(state *model.State, current **model.SlideIndex) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	next := old.state.Clone()
	current := cloneIndex(old.current)
	if err := fn(next, &current); err != nil {
		return err
	}
	if current != nil {
		if _, ok := next.Slide(*current); !ok {
			current = nil
		}
	}

	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if !sameIndex(old.current, current) {
		if err := s.store.SaveCurrent(ctx, current); err != nil {
			return fmt.Errorf("save current slide: %w", err)
		}
	}

	s.snap.Store(&snapshot{state: next, current: current})
	s.publish(ctx, next, current)
	return nil
}

// selectSlide moves the selection without touching the state.
func (s *service) selectSlide(ctx context.Context, fn func(state *model.State, current *model.SlideIndex) (*model.SlideIndex, error)) (Current, error) {
	if err := ctx.Err(); err != nil {
		return Current{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.snap.Load()
	current, err := fn(old.state, cloneIndex(old.current))
	if err != nil {
		return Current{}, err
	}

	if !sameIndex(old.current, current) {
		if err := s.store.SaveCurrent(ctx, current); err != nil {
			return Current{}, fmt.Errorf("save current slide: %w", err)
		}
		s.snap.Store(&snapshot{state: old.state, current: current})
		s.publish(ctx, old.state, current)
	}
	return Current{Index: cloneIndex(current), Content: render(old.state, current)}, nil
}

func (s *service) publish(ctx context.Context, state *model.State, current *model.SlideIndex) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, render(state, current)); err != nil {
		s.logger.WithContext(ctx).Warn().Err(err).Msg("publish slide")
	}
}

func render(state *model.State, current *model.SlideIndex) slide.Content {
	if current == nil {
		return slide.Blank(state.Theme())
	}
	content, ok := slide.ForIndex(state, *current)
	if !ok {
		return slide.Blank(state.Theme())
	}
	return content
}

func (s *service) State(ctx context.Context) (*model.State, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.state, nil
}

func (s *service) Merge(ctx context.Context, other *model.State) error {
	if other == nil {
		return fmt.Errorf("%w: state is required", ErrInvalidInput)
	}
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		state.Merge(other)
		return nil
	})
}

func (s *service) SetTheme(ctx context.Context, theme model.Theme) error {
	if theme.HeadingSize == 0 || theme.BodySize == 0 {
		return fmt.Errorf("%w: font sizes must be positive", ErrInvalidInput)
	}
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		state.SetTheme(theme)
		return nil
	})
}

func (s *service) ListSongs(ctx context.Context, filter string) ([]model.SongListing, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(snap.state.SongsByTitle(), func(listing model.SongListing, _ int) bool {
		return model.SongMatchesFilter(listing.Song, filter)
	}), nil
}

func (s *service) Song(ctx context.Context, id uint32) (openlyrics.Song, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return openlyrics.Song{}, err
	}
	song, ok := snap.state.Song(id)
	if !ok {
		return openlyrics.Song{}, ErrSongNotFound
	}
	return song, nil
}

// ImportFile imports a state, OpenLyrics or text file. The returned id is
// set for single song imports.
func (s *service) ImportFile(ctx context.Context, filename string, raw []byte) (*uint32, error) {
	var songID *uint32
	err := s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		result, err := importer.Import(state, filename, raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		*state = *result.State
		songID = result.SongID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return songID, nil
}

func (s *service) UpdateSong(ctx context.Context, id uint32, song openlyrics.Song) error {
	if err := validateSong(song); err != nil {
		return err
	}
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		if !state.UpdateSong(id, song) {
			return ErrSongNotFound
		}
		return nil
	})
}

func (s *service) RemoveSong(ctx context.Context, id uint32) error {
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		if _, ok := state.Song(id); !ok {
			return ErrSongNotFound
		}
		state.RemoveSong(id)
		return nil
	})
}

func validateSong(song openlyrics.Song) error {
	if len(song.Properties.Titles) == 0 || strings.TrimSpace(song.Title()) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, openlyrics.ErrNoTitle)
	}
	return nil
}

func (s *service) Playlists(ctx context.Context) ([]model.PlaylistListing, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.state.Playlists(), nil
}

func (s *service) Playlist(ctx context.Context, id uint32) (model.Playlist, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return model.Playlist{}, err
	}
	playlist, ok := snap.state.Playlist(id)
	if !ok {
		return model.Playlist{}, ErrPlaylistNotFound
	}
	return playlist, nil
}

func (s *service) CreatePlaylist(ctx context.Context, name string) (uint32, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultPlaylistName
	}
	var id uint32
	err := s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		id = state.AddPlaylist(model.NewPlaylist(name))
		return nil
	})
	return id, err
}

func (s *service) RenamePlaylist(ctx context.Context, id uint32, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", ErrInvalidInput)
	}
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		if !state.RenamePlaylist(id, name) {
			return ErrPlaylistNotFound
		}
		return nil
	})
}

// DuplicatePlaylist copies a playlist. An empty name derives one from the
// original.
func (s *service) DuplicatePlaylist(ctx context.Context, id uint32, name string) (uint32, error) {
	var copyID uint32
	err := s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		original, ok := state.Playlist(id)
		if !ok {
			return ErrPlaylistNotFound
		}
		if name = strings.TrimSpace(name); name == "" {
			name = original.Name + " (copy)"
		}
		copyID, _ = state.DuplicatePlaylist(id, name)
		return nil
	})
	return copyID, err
}

func (s *service) DeletePlaylist(ctx context.Context, id uint32) error {
	return s.update(ctx, func(state *model.State, current **model.SlideIndex) error {
		if !state.RemovePlaylist(id) {
			return ErrPlaylistNotFound
		}
		if *current != nil && (*current).PlaylistID == id {
			*current = nil
		}
		return nil
	})
}

func (s *service) Slides(ctx context.Context, playlistID uint32) ([]model.IndexedSlide, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.state.Playlist(playlistID); !ok {
		return nil, ErrPlaylistNotFound
	}
	return snap.state.Slides(playlistID), nil
}

func (s *service) AddSongToPlaylist(ctx context.Context, playlistID, songID uint32) (model.SlideIndex, error) {
	return s.appendEntry(ctx, playlistID, model.SongEntry{SongID: songID})
}

func (s *service) AddText(ctx context.Context, playlistID uint32, text string) (model.SlideIndex, error) {
	if strings.TrimSpace(text) == "" {
		return model.SlideIndex{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	return s.appendEntry(ctx, playlistID, model.TextEntry(text))
}

func (s *service) appendEntry(ctx context.Context, playlistID uint32, entry model.PlaylistEntry) (model.SlideIndex, error) {
	var idx model.SlideIndex
	err := s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		if _, ok := state.Playlist(playlistID); !ok {
			return ErrPlaylistNotFound
		}
		var ok bool
		if idx, ok = state.AppendEntry(playlistID, entry); !ok {
			return ErrSongNotFound
		}
		return nil
	})
	return idx, err
}

func (s *service) UpdateText(ctx context.Context, idx model.SlideIndex, text string) error {
	return s.update(ctx, func(state *model.State, _ **model.SlideIndex) error {
		if !state.UpdateTextEntry(idx, text) {
			return ErrEntryNotFound
		}
		return nil
	})
}

// RemoveEntry deletes an entry. A selection inside the playlist is clamped
// to the remaining entries with its page reset, or cleared when the playlist
// is left empty.
func (s *service) RemoveEntry(ctx context.Context, idx model.SlideIndex) error {
	return s.update(ctx, func(state *model.State, current **model.SlideIndex) error {
		selection, ok := state.RemoveEntry(idx)
		if !ok {
			return ErrEntryNotFound
		}
		c := *current
		if c == nil || c.PlaylistID != idx.PlaylistID {
			return nil
		}
		if selection == nil {
			*current = nil
			return nil
		}
		playlist, _ := state.Playlist(idx.PlaylistID)
		c.EntryIndex = min(c.EntryIndex, len(playlist.Entries)-1)
		c.PageIndex = 0
		return nil
	})
}

// MoveEntry moves an entry by offset. A selection on the moved entry, or on
// the entry it swapped with, follows it.
func (s *service) MoveEntry(ctx context.Context, idx model.SlideIndex, offset int) (model.SlideIndex, error) {
	var moved model.SlideIndex
	err := s.update(ctx, func(state *model.State, current **model.SlideIndex) error {
		var ok bool
		if moved, ok = state.MoveEntry(idx, offset); !ok {
			return ErrEntryNotFound
		}
		if c := *current; c != nil && c.PlaylistID == idx.PlaylistID {
			switch c.EntryIndex {
			case idx.EntryIndex:
				c.EntryIndex = moved.EntryIndex
			case moved.EntryIndex:
				c.EntryIndex = idx.EntryIndex
			}
		}
		return nil
	})
	return moved, err
}

func (s *service) Current(ctx context.Context) (Current, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Current{}, err
	}
	return Current{Index: cloneIndex(snap.current), Content: render(snap.state, snap.current)}, nil
}

// SetCurrent selects idx, or clears the display when idx is nil.
func (s *service) SetCurrent(ctx context.Context, idx *model.SlideIndex) (Current, error) {
	return s.selectSlide(ctx, func(state *model.State, _ *model.SlideIndex) (*model.SlideIndex, error) {
		if idx == nil {
			return nil, nil
		}
		if _, ok := state.Slide(*idx); !ok {
			return nil, ErrSlideNotFound
		}
		return cloneIndex(idx), nil
	})
}

// Next advances to the following slide. At the end of the playlist the
// selection stays where it is.
func (s *service) Next(ctx context.Context) (Current, error) {
	return s.step(ctx, (*model.State).Next)
}

// Previous steps back one slide. At the start of the playlist the selection
// stays where it is.
func (s *service) Previous(ctx context.Context) (Current, error) {
	return s.step(ctx, (*model.State).Previous)
}

func (s *service) step(ctx context.Context, move func(*model.State, model.SlideIndex) (model.SlideIndex, bool)) (Current, error) {
	return s.selectSlide(ctx, func(state *model.State, current *model.SlideIndex) (*model.SlideIndex, error) {
		if current == nil {
			return nil, ErrNoSelection
		}
		next, ok := move(state, *current)
		if !ok {
			return current, nil
		}
		return &next, nil
	})
}

func cloneIndex(idx *model.SlideIndex) *model.SlideIndex {
	if idx == nil {
		return nil
	}
	out := *idx
	return &out
}

func sameIndex(a, b *model.SlideIndex) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
