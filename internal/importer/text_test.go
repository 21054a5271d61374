package importer

import (
	"errors"
	"reflect"
	"testing"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

func TestTextParserHeaders(t *testing.T) {
	raw := "Title: Amazing Grace\nAuthors: John Newton (words)\nSongbooks: Hymnal 48\nVerse order: v1 v1\n\nv1:\nAmazing grace\nhow sweet the sound\n"

	song, err := TextParser{FallbackTitle: "grace"}.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if song.Title() != "Amazing Grace" {
		t.Fatalf("unexpected title %q", song.Title())
	}
	if want := []openlyrics.Author{{Name: "John Newton", Type: "words"}}; !reflect.DeepEqual(song.Properties.Authors, want) {
		t.Fatalf("unexpected authors %+v", song.Properties.Authors)
	}
	if want := []openlyrics.Songbook{{Name: "Hymnal", Entry: "48"}}; !reflect.DeepEqual(song.Properties.Songbooks, want) {
		t.Fatalf("unexpected songbooks %+v", song.Properties.Songbooks)
	}
	if song.Properties.VerseOrder != "v1 v1" {
		t.Fatalf("unexpected verse order %q", song.Properties.VerseOrder)
	}

	if len(song.Lyrics) != 1 {
		t.Fatalf("expected one verse, got %d", len(song.Lyrics))
	}
	verse := song.Lyrics[0].(*openlyrics.Verse)
	if verse.Name != "v1" {
		t.Fatalf("unexpected verse name %q", verse.Name)
	}
	if got := openlyrics.SimplifyContents(verse.Lines[0].Contents); !reflect.DeepEqual(got, []string{"Amazing grace", "how sweet the sound"}) {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestTextParserFallbackTitle(t *testing.T) {
	song, err := TextParser{FallbackTitle: "Be Thou My Vision"}.Parse([]byte("\ufeffv1:\nBe thou my vision\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if song.Title() != "Be Thou My Vision" {
		t.Fatalf("unexpected title %q", song.Title())
	}
	if verse := song.Lyrics[0].(*openlyrics.Verse); verse.Name != "v1" {
		t.Fatalf("expected header to be read as verse name, got %q", verse.Name)
	}

	if _, err := (TextParser{}).Parse([]byte("v1:\nline\n")); !errors.Is(err, openlyrics.ErrNoTitle) {
		t.Fatalf("expected ErrNoTitle, got %v", err)
	}
}

func TestImportTextUsesFilename(t *testing.T) {
	result, err := Import(model.NewState(), "songs/Abide With Me.txt", []byte("Abide with me\nfast falls the eventide\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	song, ok := result.State.Song(*result.SongID)
	if !ok || song.Title() != "Abide With Me" {
		t.Fatalf("unexpected song %+v", song)
	}
}
