package importer

import (
	"strings"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

// TextParser reads plain lyrics in the model.LyricsAsText layout, optionally
// preceded by "Title:", "Authors:", "Songbooks:" and "Verse order:" header
// lines. FallbackTitle is used when no title header is present.
type TextParser struct {
	FallbackTitle string
}

func (p TextParser) Parse(raw []byte) (openlyrics.Song, error) {
	text := strings.TrimPrefix(string(raw), "\ufeff")
	lines := strings.SplitAfter(text, "\n")

	var song openlyrics.Song
	title := strings.TrimSpace(p.FallbackTitle)
	consumed := 0
	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			break
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			title = value
		case "authors", "author":
			model.SetAuthorsFromString(&song, value)
		case "songbooks", "songbook":
			model.SetSongbooksFromString(&song, value)
		case "verse order":
			song.Properties.VerseOrder = value
		default:
			ok = false
		}
		if !ok {
			break
		}
		consumed++
	}
	if title == "" {
		return openlyrics.Song{}, openlyrics.ErrNoTitle
	}
	song.Properties.Titles = []openlyrics.Title{{Text: title}}

	body := strings.Join(lines[consumed:], "")
	if consumed > 0 {
		body = strings.TrimLeft(body, "\r\n")
	}
	model.SetLyricsFromText(&song, body)
	return song, nil
}
