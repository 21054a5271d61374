package presenter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
	"lyricdeck/internal/slide"
	"lyricdeck/internal/store"
)

type recordingPublisher struct {
	mu       sync.Mutex
	contents []slide.Content
}

func (p *recordingPublisher) Publish(_ context.Context, content slide.Content) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contents = append(p.contents, content)
	return nil
}

func (p *recordingPublisher) last(t *testing.T) slide.Content {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.contents) == 0 {
		t.Fatal("nothing published")
	}
	return p.contents[len(p.contents)-1]
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Save(context.Context, *model.State) error {
	return errors.New("disk full")
}

const graceXML = `<song xmlns="http://openlyrics.info/namespace/2009/song" version="0.9">
  <properties><titles><title>Amazing Grace</title></titles><authors><author>John Newton</author></authors></properties>
  <lyrics>
    <verse name="v1"><lines>Amazing grace</lines><lines>I once was lost</lines></verse>
  </lyrics>
</song>`

func newService(t *testing.T) (Service, *recordingPublisher, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore(nil)
	pub := &recordingPublisher{}
	svc, err := Open(context.Background(), mem, pub, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return svc, pub, mem
}

func importGrace(t *testing.T, svc Service) uint32 {
	t.Helper()
	id, err := svc.ImportFile(context.Background(), "grace.xml", []byte(graceXML))
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if id == nil {
		t.Fatal("expected a song id")
	}
	return *id
}

func TestOpenPublishesBlank(t *testing.T) {
	_, pub, _ := newService(t)

	if got := pub.last(t); len(got.Lines) != 0 || got.Title != nil {
		t.Fatalf("expected blank display, got %+v", got)
	}
}

func TestPresentSong(t *testing.T) {
	ctx := context.Background()
	svc, pub, mem := newService(t)
	songID := importGrace(t, svc)

	entry, err := svc.AddSongToPlaylist(ctx, 0, songID)
	if err != nil {
		t.Fatalf("AddSongToPlaylist: %v", err)
	}

	current, err := svc.SetCurrent(ctx, &entry)
	if err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if current.Content.Title == nil || *current.Content.Title != "Hymn" {
		t.Fatalf("expected song start title, got %+v", current.Content)
	}

	steps := []struct {
		wantLine   string
		wantCredit bool
	}{
		{wantLine: "1. Amazing grace"},
		{wantLine: "I once was lost", wantCredit: true},
	}
	for i, step := range steps {
		current, err = svc.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if current.Index == nil || current.Index.PageIndex != i+1 {
			t.Fatalf("step %d: unexpected index %v", i, current.Index)
		}
		if got := current.Content.Lines[0].Text; got != step.wantLine {
			t.Fatalf("step %d: expected %q, got %q", i, step.wantLine, got)
		}
		if (current.Content.Credit != nil) != step.wantCredit {
			t.Fatalf("step %d: credit %v", i, current.Content.Credit)
		}
	}
	if published := pub.last(t); published.Lines[0].Text != "I once was lost" {
		t.Fatalf("expected last slide to be published, got %+v", published)
	}

	current, err = svc.Next(ctx)
	if err != nil || current.Index.PageIndex != 2 {
		t.Fatalf("expected Next at the end to stay put, got %v (%v)", current.Index, err)
	}

	stored, _ := mem.LoadCurrent(ctx)
	if stored == nil || *stored != (model.SlideIndex{PageIndex: 2}) {
		t.Fatalf("expected selection to be persisted, got %v", stored)
	}

	current, err = svc.Previous(ctx)
	if err != nil || current.Index.PageIndex != 1 {
		t.Fatalf("Previous: %v (%v)", current.Index, err)
	}
}

func TestStepWithoutSelection(t *testing.T) {
	svc, _, _ := newService(t)

	if _, err := svc.Next(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestSetCurrentRejectsStaleIndex(t *testing.T) {
	svc, _, _ := newService(t)

	if _, err := svc.SetCurrent(context.Background(), &model.SlideIndex{EntryIndex: 3}); !errors.Is(err, ErrSlideNotFound) {
		t.Fatalf("expected ErrSlideNotFound, got %v", err)
	}
}

func TestRemoveSongClearsStaleSelection(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newService(t)
	songID := importGrace(t, svc)

	entry, _ := svc.AddSongToPlaylist(ctx, 0, songID)
	entry.PageIndex = 2
	if _, err := svc.SetCurrent(ctx, &entry); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	if err := svc.RemoveSong(ctx, songID); err != nil {
		t.Fatalf("RemoveSong: %v", err)
	}

	current, _ := svc.Current(ctx)
	if current.Index != nil {
		t.Fatalf("expected selection on a removed song page to be cleared, got %v", current.Index)
	}
	if got := pub.last(t); len(got.Lines) != 0 {
		t.Fatalf("expected cleared display, got %+v", got)
	}

	playlist, _ := svc.Playlist(ctx, 0)
	if playlist.Entries[0] != model.TextEntry(model.RemovedSongText) {
		t.Fatalf("expected placeholder entry, got %v", playlist.Entries)
	}
	if err := svc.RemoveSong(ctx, songID); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestRemoveEntryClampsSelection(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.AddText(ctx, 0, text); err != nil {
			t.Fatalf("AddText: %v", err)
		}
	}
	if _, err := svc.SetCurrent(ctx, &model.SlideIndex{EntryIndex: 2}); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	if err := svc.RemoveEntry(ctx, model.SlideIndex{EntryIndex: 2}); err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	current, _ := svc.Current(ctx)
	if current.Index == nil || current.Index.EntryIndex != 1 || current.Content.Lines[0].Text != "two" {
		t.Fatalf("expected selection clamped to entry 1, got %+v", current)
	}

	for i := 0; i < 2; i++ {
		if err := svc.RemoveEntry(ctx, model.SlideIndex{}); err != nil {
			t.Fatalf("RemoveEntry: %v", err)
		}
	}
	current, _ = svc.Current(ctx)
	if current.Index != nil {
		t.Fatalf("expected selection cleared on empty playlist, got %v", current.Index)
	}

	if err := svc.RemoveEntry(ctx, model.SlideIndex{}); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestMoveEntryFollowsSelection(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	svc.AddText(ctx, 0, "first")
	svc.AddText(ctx, 0, "second")
	if _, err := svc.SetCurrent(ctx, &model.SlideIndex{EntryIndex: 0}); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}

	moved, err := svc.MoveEntry(ctx, model.SlideIndex{EntryIndex: 0}, 1)
	if err != nil {
		t.Fatalf("MoveEntry: %v", err)
	}
	if moved.EntryIndex != 1 {
		t.Fatalf("expected entry to move to 1, got %v", moved)
	}
	current, _ := svc.Current(ctx)
	if current.Index == nil || current.Index.EntryIndex != 1 || current.Content.Lines[0].Text != "first" {
		t.Fatalf("expected selection to follow the moved entry, got %+v", current)
	}

	if _, err := svc.MoveEntry(ctx, model.SlideIndex{EntryIndex: 1}, 1); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestPlaylistLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	id, err := svc.CreatePlaylist(ctx, "  Evening ")
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if _, err := svc.AddText(ctx, id, "Welcome"); err != nil {
		t.Fatalf("AddText: %v", err)
	}

	copyID, err := svc.DuplicatePlaylist(ctx, id, "")
	if err != nil {
		t.Fatalf("DuplicatePlaylist: %v", err)
	}
	duplicate, _ := svc.Playlist(ctx, copyID)
	if duplicate.Name != "Evening (copy)" || len(duplicate.Entries) != 1 {
		t.Fatalf("unexpected duplicate %+v", duplicate)
	}

	if err := svc.RenamePlaylist(ctx, copyID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := svc.RenamePlaylist(ctx, 42, "x"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	if _, err := svc.SetCurrent(ctx, &model.SlideIndex{PlaylistID: id}); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := svc.DeletePlaylist(ctx, id); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	current, _ := svc.Current(ctx)
	if current.Index != nil {
		t.Fatalf("expected selection cleared with its playlist, got %v", current.Index)
	}
	if _, err := svc.Slides(ctx, id); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}

	playlists, _ := svc.Playlists(ctx)
	if len(playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(playlists))
	}
}

func TestAddEntryValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	if _, err := svc.AddSongToPlaylist(ctx, 0, 9); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
	if _, err := svc.AddText(ctx, 7, "hi"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
	if _, err := svc.AddText(ctx, 0, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateTextRepublishesCurrent(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newService(t)

	idx, _ := svc.AddText(ctx, 0, "Notices")
	if _, err := svc.SetCurrent(ctx, &idx); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := svc.UpdateText(ctx, idx, "Notices\nCoffee after"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if got := pub.last(t); len(got.Lines) != 2 || got.Lines[1].Text != "Coffee after" {
		t.Fatalf("expected updated text to be published, got %+v", got)
	}
}

func TestSongEditing(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	songID := importGrace(t, svc)

	song, err := svc.Song(ctx, songID)
	if err != nil {
		t.Fatalf("Song: %v", err)
	}
	song.Properties.Titles = []openlyrics.Title{{Text: "Amazing Grace (new)"}}
	if err := svc.UpdateSong(ctx, songID, song); err != nil {
		t.Fatalf("UpdateSong: %v", err)
	}

	listings, _ := svc.ListSongs(ctx, "new")
	if len(listings) != 1 || listings[0].ID != songID {
		t.Fatalf("unexpected listings %+v", listings)
	}
	if listings, _ := svc.ListSongs(ctx, "missing"); len(listings) != 0 {
		t.Fatalf("expected no listings, got %+v", listings)
	}

	song.Properties.Titles = nil
	if err := svc.UpdateSong(ctx, songID, song); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Song(ctx, 99); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestImportFileRejectsBadInput(t *testing.T) {
	svc, _, _ := newService(t)

	if _, err := svc.ImportFile(context.Background(), "deck.pptx", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if songs, _ := svc.ListSongs(context.Background(), ""); len(songs) != 0 {
		t.Fatalf("expected no songs after failed import, got %d", len(songs))
	}
}

func TestFailedSaveKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, err := Open(ctx, failingStore{store.NewMemoryStore(nil)}, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := svc.CreatePlaylist(ctx, "Lost"); err == nil {
		t.Fatal("expected save error")
	}
	playlists, _ := svc.Playlists(ctx)
	if len(playlists) != 1 {
		t.Fatalf("expected unchanged playlists, got %d", len(playlists))
	}
}

func TestThemeAndMerge(t *testing.T) {
	ctx := context.Background()
	svc, pub, _ := newService(t)

	theme := model.DefaultTheme()
	theme.BackgroundColour = "#101010"
	if err := svc.SetTheme(ctx, theme); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if got := pub.last(t).Theme; got != theme {
		t.Fatalf("expected theme to be published, got %+v", got)
	}
	if err := svc.SetTheme(ctx, model.Theme{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	other := model.NewState()
	other.AddSong(openlyrics.Song{Properties: openlyrics.Properties{Titles: []openlyrics.Title{{Text: "Merged"}}}})
	if err := svc.Merge(ctx, other); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	state, _ := svc.State(ctx)
	if state.SongCount() != 1 || state.Theme() != model.DefaultTheme() {
		t.Fatalf("unexpected merged state: %d songs, theme %+v", state.SongCount(), state.Theme())
	}
}

func TestCancelledContext(t *testing.T) {
	svc, _, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Playlists(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := svc.CreatePlaylist(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
