package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"lyricdeck/internal/openlyrics"
)

// TitleForSong returns the song's primary title.
func TitleForSong(song openlyrics.Song) string {
	return song.Title()
}

// TitleWithSongbook prefixes the title with the first songbook entry, if any.
func TitleWithSongbook(song openlyrics.Song) string {
	if songbook, ok := FirstSongbook(song); ok {
		return songbook + ": " + TitleForSong(song)
	}
	return TitleForSong(song)
}

// FirstSongbook formats the song's first songbook reference.
func FirstSongbook(song openlyrics.Song) (string, bool) {
	if len(song.Properties.Songbooks) == 0 {
		return "", false
	}
	return songbookString(song.Properties.Songbooks[0]), true
}

// SongMatchesFilter reports whether filter occurs, ignoring case, in the
// song's title with songbook.
func SongMatchesFilter(song openlyrics.Song, filter string) bool {
	return strings.Contains(strings.ToLower(TitleWithSongbook(song)), strings.ToLower(filter))
}

// FirstLine returns the first display line of one page of a verse.
func FirstLine(song openlyrics.Song, lyricEntryIndex, linesIndex int) (string, bool) {
	entry, ok := song.Entry(lyricEntryIndex)
	if !ok {
		return "", false
	}
	verse, ok := entry.(*openlyrics.Verse)
	if !ok || linesIndex < 0 || linesIndex >= len(verse.Lines) {
		return "", false
	}
	lines := openlyrics.SimplifyContents(verse.Lines[linesIndex].Contents)
	if len(lines) == 0 {
		return "", false
	}
	return lines[0], true
}

// LyricsAsText renders the song's verses for editing: a "name:" header per
// verse, one line per display line, and a blank line between pages and
// verses. Instrumental entries are left out.
func LyricsAsText(song openlyrics.Song) string {
	var b strings.Builder
	for _, entry := range song.Lyrics {
		verse, ok := entry.(*openlyrics.Verse)
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", verse.Name)
		for i, page := range verse.Lines {
			if i > 0 {
				b.WriteString("\n")
			}
			for _, line := range openlyrics.SimplifyContents(page.Contents) {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// SetLyricsFromText replaces the song's lyrics with verses parsed from the
// LyricsAsText format.
func SetLyricsFromText(song *openlyrics.Song, text string) {
	lines := textLines(text)
	var lyrics openlyrics.Lyrics
	for i := 0; i < len(lines); {
		name := ""
		if header := strings.TrimSpace(lines[i]); strings.HasSuffix(header, ":") {
			name = strings.TrimRight(header, ":")
			i++
		}

		verse := &openlyrics.Verse{Name: name}
		for i < len(lines) && !strings.HasSuffix(strings.TrimSpace(lines[i]), ":") {
			var page openlyrics.Lines
			page, i = parsePage(lines, i)
			verse.Lines = append(verse.Lines, page)
		}
		lyrics = append(lyrics, verse)
	}
	song.Lyrics = lyrics
}

// parsePage reads lines up to the next blank line, which is consumed.
func parsePage(lines []string, i int) (openlyrics.Lines, int) {
	var page openlyrics.Lines
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			return page, i + 1
		}
		if len(page.Contents) > 0 {
			page.Contents = append(page.Contents, openlyrics.Br{})
		}
		page.Contents = append(page.Contents, openlyrics.Text(line))
	}
	return page, i
}

// textLines splits text into lines, dropping the empty line after a final newline.
func textLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// AuthorsAsString formats the authors as "Name (type)", comma-separated.
func AuthorsAsString(song openlyrics.Song) string {
	return strings.Join(lo.Map(song.Properties.Authors, func(author openlyrics.Author, _ int) string {
		if author.Type != "" {
			return fmt.Sprintf("%s (%s)", author.Name, author.Type)
		}
		return author.Name
	}), ", ")
}

// SetAuthorsFromString parses the AuthorsAsString format.
func SetAuthorsFromString(song *openlyrics.Song, authors string) {
	song.Properties.Authors = lo.FilterMap(strings.Split(authors, ","), func(raw string, _ int) (openlyrics.Author, bool) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return openlyrics.Author{}, false
		}
		if name, rest, ok := strings.Cut(raw, "("); ok && strings.HasSuffix(rest, ")") {
			return openlyrics.Author{
				Name: strings.TrimSpace(name),
				Type: strings.TrimSpace(strings.TrimRight(rest, ")")),
			}, true
		}
		return openlyrics.Author{Name: raw}, true
	})
}

func songbookString(songbook openlyrics.Songbook) string {
	if songbook.Entry != "" {
		return songbook.Name + " " + songbook.Entry
	}
	return songbook.Name
}

// SongbookEntriesAsString formats the songbooks as "Name entry", comma-separated.
func SongbookEntriesAsString(song openlyrics.Song) string {
	return strings.Join(lo.Map(song.Properties.Songbooks, func(songbook openlyrics.Songbook, _ int) string {
		return songbookString(songbook)
	}), ", ")
}

// SetSongbooksFromString parses the SongbookEntriesAsString format. The
// entry is whatever follows the last space.
func SetSongbooksFromString(song *openlyrics.Song, songbooks string) {
	song.Properties.Songbooks = lo.FilterMap(strings.Split(songbooks, ","), func(raw string, _ int) (openlyrics.Songbook, bool) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return openlyrics.Songbook{}, false
		}
		if i := strings.LastIndex(raw, " "); i >= 0 {
			return openlyrics.Songbook{Name: raw[:i], Entry: raw[i+1:]}, true
		}
		return openlyrics.Songbook{Name: raw}, true
	})
}

// SlideText returns a one-line label for a slide.
func SlideText(state *State, slide Slide) string {
	switch sl := slide.(type) {
	case SongStart:
		song, ok := state.Song(sl.SongID)
		if !ok {
			return ""
		}
		return TitleWithSongbook(song)
	case Lyrics:
		song, ok := state.Song(sl.SongID)
		if !ok {
			return ""
		}
		entry, ok := song.Entry(sl.LyricEntryIndex)
		if !ok {
			return ""
		}
		if _, isInstrument := entry.(*openlyrics.Instrument); isInstrument {
			return "(instrumental " + entry.EntryName() + ")"
		}
		line, _ := FirstLine(song, sl.LyricEntryIndex, sl.LinesIndex)
		return line
	case Text:
		line, _, _ := strings.Cut(sl.Text, "\n")
		return line
	}
	return ""
}
