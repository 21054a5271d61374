// Package slide turns resolved slides into render-ready content.
package slide

import (
	"fmt"
	"strings"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

// Line is one line of slide body text.
type Line struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Content is everything a display needs to draw one slide.
type Content struct {
	Title  *string     `json:"title,omitempty"`
	Lines  []Line      `json:"lines"`
	Credit *string     `json:"credit,omitempty"`
	Theme  model.Theme `json:"theme"`
}

// Blank returns content with no text, used when nothing is selected.
func Blank(theme model.Theme) Content {
	return Content{Lines: []Line{}, Theme: theme}
}

// ForIndex resolves idx against state and formats it.
func ForIndex(state *model.State, idx model.SlideIndex) (Content, bool) {
	s, ok := state.Slide(idx)
	if !ok {
		return Content{}, false
	}
	return ForSlide(state, s), true
}

// ForSlide formats a resolved slide with the state's theme. A slide whose
// song is not in the catalog renders blank.
func ForSlide(state *model.State, s model.Slide) Content {
	theme := state.Theme()
	switch sl := s.(type) {
	case model.SongStart:
		song, ok := state.Song(sl.SongID)
		if !ok {
			return Blank(theme)
		}
		return songTitle(song, theme)
	case model.Lyrics:
		song, ok := state.Song(sl.SongID)
		if !ok {
			return Blank(theme)
		}
		return songPage(song, sl, theme)
	case model.Text:
		return forText(sl.Text, theme)
	}
	return Blank(theme)
}

// forText renders free text as plain lines with no markup.
func forText(text string, theme model.Theme) Content {
	content := Blank(theme)
	for _, line := range strings.Split(text, "\n") {
		content.Lines = append(content.Lines, Line{Text: strings.TrimRight(line, "\r")})
	}
	return content
}

func songTitle(song openlyrics.Song, theme model.Theme) Content {
	title := "Hymn"
	if songbook, ok := model.FirstSongbook(song); ok {
		title = "Hymn " + songbook
	}
	return Content{
		Title: &title,
		Lines: []Line{{Text: model.TitleForSong(song), Bold: true}},
		Theme: theme,
	}
}

func songPage(song openlyrics.Song, page model.Lyrics, theme model.Theme) Content {
	content := Blank(theme)
	if page.LastPage {
		credit := model.AuthorsAsString(song)
		content.Credit = &credit
	}

	entry, ok := song.Entry(page.LyricEntryIndex)
	if !ok {
		return content
	}

	switch e := entry.(type) {
	case *openlyrics.Verse:
		if page.LinesIndex < 0 || page.LinesIndex >= len(e.Lines) {
			return content
		}
		lines := e.Lines[page.LinesIndex]

		if lines.Part != "" {
			content.Lines = append(content.Lines, Line{Text: "(" + lines.Part + ")", Bold: true})
		}

		text := openlyrics.SimplifyContents(lines.Contents)
		if strings.HasPrefix(e.Name, "v") && page.LinesIndex == 0 && len(text) > 0 {
			text[0] = e.Name[1:] + ". " + text[0]
		}
		for _, line := range text {
			content.Lines = append(content.Lines, Line{Text: line})
		}

		if lines.Repeat != nil {
			content.Lines = append(content.Lines, Line{Text: fmt.Sprintf("x%d", *lines.Repeat), Bold: true, Italic: true})
		}
	case *openlyrics.Instrument:
		content.Lines = append(content.Lines, Line{Text: "(instrumental " + e.Name + ")"})
	}
	return content
}
