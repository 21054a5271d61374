package openlyrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned when a JSON envelope names no known variant.
var ErrUnknownVariant = errors.New("unknown variant")

type lyricEntryJSON struct {
	Verse      *Verse      `json:"verse,omitempty"`
	Instrument *Instrument `json:"instrument,omitempty"`
}

func (l Lyrics) MarshalJSON() ([]byte, error) {
	out := make([]lyricEntryJSON, 0, len(l))
	for _, entry := range l {
		switch e := entry.(type) {
		case *Verse:
			out = append(out, lyricEntryJSON{Verse: e})
		case *Instrument:
			out = append(out, lyricEntryJSON{Instrument: e})
		default:
			return nil, fmt.Errorf("marshal lyric entry %T: %w", entry, ErrUnknownVariant)
		}
	}
	return json.Marshal(out)
}

func (l *Lyrics) UnmarshalJSON(data []byte) error {
	var raw []lyricEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	entries := make(Lyrics, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Verse != nil:
			entries = append(entries, r.Verse)
		case r.Instrument != nil:
			entries = append(entries, r.Instrument)
		default:
			return fmt.Errorf("lyric entry %d: %w", i, ErrUnknownVariant)
		}
	}
	*l = entries
	return nil
}

type verseContentJSON struct {
	Text    *string   `json:"text,omitempty"`
	Br      *struct{} `json:"br,omitempty"`
	Comment *string   `json:"comment,omitempty"`
	Chord   *Chord    `json:"chord,omitempty"`
	Tag     *Tag      `json:"tag,omitempty"`
}

func (c Contents) MarshalJSON() ([]byte, error) {
	out := make([]verseContentJSON, 0, len(c))
	for _, content := range c {
		switch v := content.(type) {
		case Text:
			text := string(v)
			out = append(out, verseContentJSON{Text: &text})
		case Br:
			out = append(out, verseContentJSON{Br: &struct{}{}})
		case Comment:
			comment := string(v)
			out = append(out, verseContentJSON{Comment: &comment})
		case *Chord:
			out = append(out, verseContentJSON{Chord: v})
		case *Tag:
			out = append(out, verseContentJSON{Tag: v})
		default:
			return nil, fmt.Errorf("marshal verse content %T: %w", content, ErrUnknownVariant)
		}
	}
	return json.Marshal(out)
}

func (c *Contents) UnmarshalJSON(data []byte) error {
	var raw []verseContentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	contents := make(Contents, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Text != nil:
			contents = append(contents, Text(*r.Text))
		case r.Br != nil:
			contents = append(contents, Br{})
		case r.Comment != nil:
			contents = append(contents, Comment(*r.Comment))
		case r.Chord != nil:
			contents = append(contents, r.Chord)
		case r.Tag != nil:
			contents = append(contents, r.Tag)
		default:
			return fmt.Errorf("verse content %d: %w", i, ErrUnknownVariant)
		}
	}
	*c = contents
	return nil
}

type instrumentContentJSON struct {
	Chord *InstrumentChord `json:"chord,omitempty"`
	Beat  *Beat            `json:"beat,omitempty"`
}

func (c InstrumentContents) MarshalJSON() ([]byte, error) {
	out := make([]instrumentContentJSON, 0, len(c))
	for _, content := range c {
		switch v := content.(type) {
		case *InstrumentChord:
			out = append(out, instrumentContentJSON{Chord: v})
		case *Beat:
			out = append(out, instrumentContentJSON{Beat: v})
		default:
			return nil, fmt.Errorf("marshal instrument content %T: %w", content, ErrUnknownVariant)
		}
	}
	return json.Marshal(out)
}

func (c *InstrumentContents) UnmarshalJSON(data []byte) error {
	var raw []instrumentContentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	contents := make(InstrumentContents, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Chord != nil:
			contents = append(contents, r.Chord)
		case r.Beat != nil:
			contents = append(contents, r.Beat)
		default:
			return fmt.Errorf("instrument content %d: %w", i, ErrUnknownVariant)
		}
	}
	*c = contents
	return nil
}

// Equal reports whether a and b are structurally equal. Absent and empty
// lists compare equal.
func Equal(a, b Song) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(left, right)
}
