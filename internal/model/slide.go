package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Slide is one resolved presenter screen: SongStart, Lyrics or Text.
type Slide interface {
	isSlide()
}

// SongStart is the title page shown before a song's lyrics.
type SongStart struct {
	SongID uint32
}

// Lyrics is one page of a song. LastPage is set only on the final page
// emitted for the song.
type Lyrics struct {
	SongID          uint32
	LyricEntryIndex int
	LinesIndex      int
	LastPage        bool
}

// Text is a free-text playlist entry. It owns a copy of the entry text.
type Text struct {
	Text string
}

func (SongStart) isSlide() {}
func (Lyrics) isSlide()    {}
func (Text) isSlide()      {}

// SlideIndex addresses a slide within a playlist. PageIndex counts pages of
// the entry's expansion; page 0 of a song is its SongStart page.
type SlideIndex struct {
	PlaylistID uint32
	EntryIndex int
	PageIndex  int
}

// IndexedSlide pairs a slide with its coordinate.
type IndexedSlide struct {
	Index SlideIndex
	Slide Slide
}

// ErrWrongNumberOfParts is returned when a slide index string does not have
// exactly three comma-separated parts.
var ErrWrongNumberOfParts = errors.New("wrong number of parts")

// String formats the index as "playlist_id,entry_index,page_index".
func (i SlideIndex) String() string {
	return fmt.Sprintf("%d,%d,%d", i.PlaylistID, i.EntryIndex, i.PageIndex)
}

// ParseSlideIndex parses the format produced by SlideIndex.String.
func ParseSlideIndex(s string) (SlideIndex, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return SlideIndex{}, fmt.Errorf("parse slide index %q: %w", s, ErrWrongNumberOfParts)
	}

	playlistID, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return SlideIndex{}, fmt.Errorf("parse slide index %q: %w", s, err)
	}
	entryIndex, err := strconv.ParseUint(parts[1], 10, 31)
	if err != nil {
		return SlideIndex{}, fmt.Errorf("parse slide index %q: %w", s, err)
	}
	pageIndex, err := strconv.ParseUint(parts[2], 10, 31)
	if err != nil {
		return SlideIndex{}, fmt.Errorf("parse slide index %q: %w", s, err)
	}

	return SlideIndex{
		PlaylistID: uint32(playlistID),
		EntryIndex: int(entryIndex),
		PageIndex:  int(pageIndex),
	}, nil
}

func (i SlideIndex) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *SlideIndex) UnmarshalText(text []byte) error {
	parsed, err := ParseSlideIndex(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
