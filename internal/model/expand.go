package model

import (
	"slices"
	"strings"

	"lyricdeck/internal/openlyrics"
)

// visit is one occurrence of a lyric entry in a song's presentation order.
type visit struct {
	entryIndex int
	pages      int
}

// visitOrder lists the lyric entries a song is presented in: the verse order
// when set, otherwise every entry once in stored order. Verse order tokens
// resolve to the first entry with that name; unknown tokens are skipped.
func visitOrder(song openlyrics.Song) []visit {
	if song.Properties.VerseOrder == "" {
		visits := make([]visit, 0, len(song.Lyrics))
		for i, entry := range song.Lyrics {
			visits = append(visits, visit{entryIndex: i, pages: pageCount(entry)})
		}
		return visits
	}

	tokens := strings.Fields(song.Properties.VerseOrder)
	visits := make([]visit, 0, len(tokens))
	for _, token := range tokens {
		i := slices.IndexFunc(song.Lyrics, func(entry openlyrics.LyricEntry) bool {
			return entry.EntryName() == token
		})
		if i < 0 {
			continue
		}
		visits = append(visits, visit{entryIndex: i, pages: pageCount(song.Lyrics[i])})
	}
	return visits
}

// pageCount is one page per verse Lines and a single page per instrumental.
func pageCount(entry openlyrics.LyricEntry) int {
	if verse, ok := entry.(*openlyrics.Verse); ok {
		return len(verse.Lines)
	}
	return 1
}

func totalPages(visits []visit) int {
	total := 0
	for _, v := range visits {
		total += v.pages
	}
	return total
}

// ExpandSong returns the slides of one song: its SongStart page followed by
// one Lyrics page per page of every visited entry.
func ExpandSong(songID uint32, song openlyrics.Song) []Slide {
	visits := visitOrder(song)
	total := totalPages(visits)

	slides := make([]Slide, 0, 1+total)
	slides = append(slides, SongStart{SongID: songID})
	emitted := 0
	for _, v := range visits {
		for page := 0; page < v.pages; page++ {
			slides = append(slides, Lyrics{
				SongID:          songID,
				LyricEntryIndex: v.entryIndex,
				LinesIndex:      page,
				LastPage:        emitted == total-1,
			})
			emitted++
		}
	}
	return slides
}

// songPage resolves lyric page offset of a song without expanding it.
func songPage(songID uint32, song openlyrics.Song, offset int) (Slide, bool) {
	if offset < 0 {
		return nil, false
	}
	visits := visitOrder(song)
	total := totalPages(visits)
	consumed := 0
	for _, v := range visits {
		if offset < v.pages {
			return Lyrics{
				SongID:          songID,
				LyricEntryIndex: v.entryIndex,
				LinesIndex:      offset,
				LastPage:        consumed+offset == total-1,
			}, true
		}
		offset -= v.pages
		consumed += v.pages
	}
	return nil, false
}

// SlidesForSong expands the song with the given id, or returns nil when it
// is not in the catalog.
func (s *State) SlidesForSong(songID uint32) []Slide {
	song, ok := s.songs[songID]
	if !ok {
		return nil
	}
	return ExpandSong(songID, song)
}

// Slides enumerates every slide of a playlist in presentation order. An
// unknown playlist has no slides.
func (s *State) Slides(playlistID uint32) []IndexedSlide {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return nil
	}

	var slides []IndexedSlide
	for entryIndex, entry := range playlist.Entries {
		switch e := entry.(type) {
		case SongEntry:
			for pageIndex, slide := range s.SlidesForSong(e.SongID) {
				slides = append(slides, IndexedSlide{
					Index: SlideIndex{PlaylistID: playlistID, EntryIndex: entryIndex, PageIndex: pageIndex},
					Slide: slide,
				})
			}
		case TextEntry:
			slides = append(slides, IndexedSlide{
				Index: SlideIndex{PlaylistID: playlistID, EntryIndex: entryIndex},
				Slide: Text{Text: string(e)},
			})
		}
	}
	return slides
}

// Slide resolves a single coordinate. It agrees with Slides for every index
// and reports false for any stale or out-of-range coordinate.
func (s *State) Slide(idx SlideIndex) (Slide, bool) {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok {
		return nil, false
	}
	entry, ok := playlist.Entry(idx.EntryIndex)
	if !ok {
		return nil, false
	}

	switch e := entry.(type) {
	case SongEntry:
		song, ok := s.songs[e.SongID]
		if !ok {
			return nil, false
		}
		if idx.PageIndex == 0 {
			return SongStart{SongID: e.SongID}, true
		}
		return songPage(e.SongID, song, idx.PageIndex-1)
	case TextEntry:
		if idx.PageIndex != 0 {
			return nil, false
		}
		return Text{Text: string(e)}, true
	}
	return nil, false
}

// entryPages returns how many slides the entry at entryIndex expands to.
func (s *State) entryPages(playlist Playlist, entryIndex int) int {
	entry, ok := playlist.Entry(entryIndex)
	if !ok {
		return 0
	}
	switch e := entry.(type) {
	case SongEntry:
		song, ok := s.songs[e.SongID]
		if !ok {
			return 0
		}
		return 1 + totalPages(visitOrder(song))
	case TextEntry:
		return 1
	}
	return 0
}

// Next returns the slide after idx in its playlist. It reports false, and
// returns idx unchanged, at the end of the playlist.
func (s *State) Next(idx SlideIndex) (SlideIndex, bool) {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok {
		return idx, false
	}
	if idx.PageIndex+1 < s.entryPages(playlist, idx.EntryIndex) {
		next := idx
		next.PageIndex++
		return next, true
	}
	for entryIndex := max(idx.EntryIndex+1, 0); entryIndex < len(playlist.Entries); entryIndex++ {
		if s.entryPages(playlist, entryIndex) > 0 {
			return SlideIndex{PlaylistID: idx.PlaylistID, EntryIndex: entryIndex}, true
		}
	}
	return idx, false
}

// Previous returns the slide before idx. Stepping back from the first page
// of an entry lands on the last page of the entry before it.
func (s *State) Previous(idx SlideIndex) (SlideIndex, bool) {
	playlist, ok := s.playlists[idx.PlaylistID]
	if !ok {
		return idx, false
	}
	pages := s.entryPages(playlist, idx.EntryIndex)
	if idx.PageIndex > 0 && pages > 0 {
		prev := idx
		prev.PageIndex = min(idx.PageIndex, pages) - 1
		return prev, true
	}
	for entryIndex := min(idx.EntryIndex, len(playlist.Entries)) - 1; entryIndex >= 0; entryIndex-- {
		if pages := s.entryPages(playlist, entryIndex); pages > 0 {
			return SlideIndex{PlaylistID: idx.PlaylistID, EntryIndex: entryIndex, PageIndex: pages - 1}, true
		}
	}
	return idx, false
}

// HasNext reports whether Next would move.
func (s *State) HasNext(idx SlideIndex) bool {
	_, ok := s.Next(idx)
	return ok
}

// HasPrevious reports whether Previous would move.
func (s *State) HasPrevious(idx SlideIndex) bool {
	_, ok := s.Previous(idx)
	return ok
}
