package slide

import (
	"reflect"
	"testing"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

func repeat(n int) *int { return &n }

func testState(t *testing.T) (*model.State, uint32) {
	t.Helper()

	state := model.NewState()
	id := state.AddSong(openlyrics.Song{
		Properties: openlyrics.Properties{
			Titles:    []openlyrics.Title{{Text: "Amazing Grace"}},
			Authors:   []openlyrics.Author{{Name: "John Newton", Type: "words"}, {Name: "Anon"}},
			Songbooks: []openlyrics.Songbook{{Name: "Hymnal", Entry: "48"}},
		},
		Lyrics: openlyrics.Lyrics{
			&openlyrics.Verse{Name: "v3", Lines: []openlyrics.Lines{
				{Contents: openlyrics.Contents{openlyrics.Text("Through many dangers"), openlyrics.Br{}, openlyrics.Text("toils and snares")}},
				{Part: "women", Repeat: repeat(2), Contents: openlyrics.Contents{openlyrics.Text("I have already come")}},
			}},
			&openlyrics.Verse{Name: "c", Lines: []openlyrics.Lines{
				{Contents: openlyrics.Contents{openlyrics.Text("Chorus line")}},
			}},
			&openlyrics.Instrument{Name: "outro"},
		},
	})
	if _, ok := state.AppendEntry(0, model.SongEntry{SongID: id}); !ok {
		t.Fatal("AppendEntry song")
	}
	if _, ok := state.AppendEntry(0, model.TextEntry("Welcome\nPlease stand")); !ok {
		t.Fatal("AppendEntry text")
	}
	return state, id
}

func TestForSlideSongStart(t *testing.T) {
	state, id := testState(t)

	got := ForSlide(state, model.SongStart{SongID: id})
	if got.Title == nil || *got.Title != "Hymn Hymnal 48" {
		t.Fatalf("unexpected title %v", got.Title)
	}
	if want := []Line{{Text: "Amazing Grace", Bold: true}}; !reflect.DeepEqual(got.Lines, want) {
		t.Fatalf("expected %v, got %v", want, got.Lines)
	}
	if got.Credit != nil {
		t.Fatalf("expected no credit, got %q", *got.Credit)
	}
}

func TestForSlideVersePages(t *testing.T) {
	state, id := testState(t)

	tests := []struct {
		name       string
		slide      model.Lyrics
		wantLines  []Line
		wantCredit string
	}{
		{
			name:  "numbered verse first page",
			slide: model.Lyrics{SongID: id, LyricEntryIndex: 0, LinesIndex: 0},
			wantLines: []Line{
				{Text: "3. Through many dangers"},
				{Text: "toils and snares"},
			},
		},
		{
			name:  "later page has part and repeat but no number",
			slide: model.Lyrics{SongID: id, LyricEntryIndex: 0, LinesIndex: 1},
			wantLines: []Line{
				{Text: "(women)", Bold: true},
				{Text: "I have already come"},
				{Text: "x2", Bold: true, Italic: true},
			},
		},
		{
			name:      "chorus is never numbered",
			slide:     model.Lyrics{SongID: id, LyricEntryIndex: 1, LinesIndex: 0},
			wantLines: []Line{{Text: "Chorus line"}},
		},
		{
			name:       "instrument on last page carries credit",
			slide:      model.Lyrics{SongID: id, LyricEntryIndex: 2, LinesIndex: 0, LastPage: true},
			wantLines:  []Line{{Text: "(instrumental outro)"}},
			wantCredit: "John Newton (words), Anon",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ForSlide(state, tc.slide)
			if got.Title != nil {
				t.Fatalf("expected no title, got %q", *got.Title)
			}
			if !reflect.DeepEqual(got.Lines, tc.wantLines) {
				t.Fatalf("expected %v, got %v", tc.wantLines, got.Lines)
			}
			switch {
			case tc.wantCredit == "" && got.Credit != nil:
				t.Fatalf("expected no credit, got %q", *got.Credit)
			case tc.wantCredit != "" && (got.Credit == nil || *got.Credit != tc.wantCredit):
				t.Fatalf("expected credit %q, got %v", tc.wantCredit, got.Credit)
			}
			if got.Theme != state.Theme() {
				t.Fatalf("expected state theme, got %+v", got.Theme)
			}
		})
	}
}

func TestForSlideText(t *testing.T) {
	state, _ := testState(t)

	got := ForSlide(state, model.Text{Text: "Welcome\r\nPlease stand"})
	want := Content{
		Lines: []Line{{Text: "Welcome"}, {Text: "Please stand"}},
		Theme: state.Theme(),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestForSlideMissingSong(t *testing.T) {
	state, _ := testState(t)

	for _, s := range []model.Slide{model.SongStart{SongID: 99}, model.Lyrics{SongID: 99}} {
		got := ForSlide(state, s)
		if len(got.Lines) != 0 || got.Title != nil || got.Credit != nil {
			t.Fatalf("expected blank content for %#v, got %+v", s, got)
		}
	}
}

func TestForIndex(t *testing.T) {
	state, _ := testState(t)

	for i, indexed := range state.Slides(0) {
		got, ok := ForIndex(state, indexed.Index)
		if !ok {
			t.Fatalf("ForIndex(%v) missing", indexed.Index)
		}
		if want := ForSlide(state, indexed.Slide); !reflect.DeepEqual(got, want) {
			t.Fatalf("ForIndex(%v) = %+v, want %+v", indexed.Index, got, want)
		}
		if lyrics, isLyrics := indexed.Slide.(model.Lyrics); isLyrics && lyrics.LastPage != (got.Credit != nil) {
			t.Fatalf("credit shown=%v on slide %d, last page=%v", got.Credit != nil, i, lyrics.LastPage)
		}
	}

	if _, ok := ForIndex(state, model.SlideIndex{EntryIndex: 7}); ok {
		t.Fatal("expected stale index to resolve to nothing")
	}
}
