// Package importer converts foreign files into songs and states.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"lyricdeck/internal/model"
	"lyricdeck/internal/openlyrics"
)

// ErrUnsupportedFormat is returned for files no parser handles.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Parser produces a song from raw input.
type Parser interface {
	Parse(raw []byte) (openlyrics.Song, error)
}

// Format identifies how an import file is read.
type Format string

const (
	FormatState      Format = "state"
	FormatOpenLyrics Format = "openlyrics"
	FormatText       Format = "text"
)

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatState, nil
	case ".xml":
		return FormatOpenLyrics, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
}

// ParserFor returns the song parser for a song format.
func ParserFor(format Format, filename string) (Parser, error) {
	switch format {
	case FormatOpenLyrics:
		return OpenLyricsParser{}, nil
	case FormatText:
		base := filepath.Base(filename)
		return TextParser{FallbackTitle: strings.TrimSuffix(base, filepath.Ext(base))}, nil
	default:
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}
}

// Result describes a completed import.
type Result struct {
	State  *model.State
	Format Format
	// SongID is set when a single song was imported.
	SongID *uint32
}

// Import reads raw according to filename's extension and applies it to a
// copy of state: a state file is merged, a song file is added. state is
// never modified, so a failed import leaves it as it was.
func Import(state *model.State, filename string, raw []byte) (Result, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return Result{}, err
	}

	if format == FormatState {
		other := &model.State{}
		if err := json.Unmarshal(raw, other); err != nil {
			return Result{}, fmt.Errorf("decode state %s: %w", filename, err)
		}
		next := state.Clone()
		next.Merge(other)
		return Result{State: next, Format: format}, nil
	}

	parser, err := ParserFor(format, filename)
	if err != nil {
		return Result{}, err
	}
	song, err := parser.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}

	next := state.Clone()
	id := next.AddSong(song)
	return Result{State: next, Format: format, SongID: &id}, nil
}

// OpenLyricsParser reads OpenLyrics XML.
type OpenLyricsParser struct{}

func (OpenLyricsParser) Parse(raw []byte) (openlyrics.Song, error) {
	return openlyrics.Unmarshal(raw)
}
