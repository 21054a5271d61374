package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEntry is returned when a playlist entry envelope names no known variant.
var ErrUnknownEntry = errors.New("unknown playlist entry")

// Playlist is a named, ordered list of entries.
type Playlist struct {
	Name    string
	Entries []PlaylistEntry
}

// PlaylistEntry is either a SongEntry or a TextEntry.
type PlaylistEntry interface {
	isPlaylistEntry()
}

// SongEntry references a song in the catalog.
type SongEntry struct {
	SongID uint32
}

// TextEntry is an inline block of free text.
type TextEntry string

func (SongEntry) isPlaylistEntry() {}
func (TextEntry) isPlaylistEntry() {}

// NewPlaylist returns an empty playlist with the given name.
func NewPlaylist(name string) Playlist {
	return Playlist{Name: name}
}

// MoveEntryIndex swaps the entry at entryIndex with the one offset places
// away. It reports false, leaving the playlist unchanged, when either index
// is out of range.
func (p *Playlist) MoveEntryIndex(entryIndex, offset int) bool {
	target := entryIndex + offset
	if entryIndex < 0 || entryIndex >= len(p.Entries) || target < 0 || target >= len(p.Entries) {
		return false
	}
	p.Entries[entryIndex], p.Entries[target] = p.Entries[target], p.Entries[entryIndex]
	return true
}

// Entry returns the entry at index, if any.
func (p Playlist) Entry(index int) (PlaylistEntry, bool) {
	if index < 0 || index >= len(p.Entries) {
		return nil, false
	}
	return p.Entries[index], true
}

// Equal reports whether p and other have the same name and entries.
func (p Playlist) Equal(other Playlist) bool {
	if p.Name != other.Name || len(p.Entries) != len(other.Entries) {
		return false
	}
	for i := range p.Entries {
		if p.Entries[i] != other.Entries[i] {
			return false
		}
	}
	return true
}

func (p Playlist) clone() Playlist {
	if p.Entries != nil {
		p.Entries = append([]PlaylistEntry(nil), p.Entries...)
	}
	return p
}

type songEntryJSON struct {
	SongID uint32 `json:"song_id"`
}

type playlistEntryJSON struct {
	Song *songEntryJSON `json:"song,omitempty"`
	Text *string        `json:"text,omitempty"`
}

type playlistJSON struct {
	Name    string              `json:"name"`
	Entries []playlistEntryJSON `json:"entries"`
}

func (p Playlist) MarshalJSON() ([]byte, error) {
	out := playlistJSON{Name: p.Name, Entries: make([]playlistEntryJSON, 0, len(p.Entries))}
	for _, entry := range p.Entries {
		switch e := entry.(type) {
		case SongEntry:
			out.Entries = append(out.Entries, playlistEntryJSON{Song: &songEntryJSON{SongID: e.SongID}})
		case TextEntry:
			text := string(e)
			out.Entries = append(out.Entries, playlistEntryJSON{Text: &text})
		default:
			return nil, fmt.Errorf("marshal playlist entry %T: %w", entry, ErrUnknownEntry)
		}
	}
	return json.Marshal(out)
}

func (p *Playlist) UnmarshalJSON(data []byte) error {
	var raw playlistJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make([]PlaylistEntry, 0, len(raw.Entries))
	for i, r := range raw.Entries {
		switch {
		case r.Song != nil:
			entries = append(entries, SongEntry{SongID: r.Song.SongID})
		case r.Text != nil:
			entries = append(entries, TextEntry(*r.Text))
		default:
			return fmt.Errorf("playlist %q entry %d: %w", raw.Name, i, ErrUnknownEntry)
		}
	}
	*p = Playlist{Name: raw.Name, Entries: entries}
	return nil
}
