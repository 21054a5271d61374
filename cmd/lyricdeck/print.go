package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lyricdeck/internal/importer"
	"lyricdeck/internal/openlyrics"
)

func printCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print FILE",
		Short: "Print the lyrics of an OpenLyrics or text song file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			song, err := readSong(args[0])
			if err != nil {
				return err
			}
			return printSong(cmd.OutOrStdout(), song)
		},
	}
}

func readSong(path string) (openlyrics.Song, error) {
	format, err := importer.FormatFromFilename(path)
	if err != nil {
		return openlyrics.Song{}, err
	}
	parser, err := importer.ParserFor(format, path)
	if err != nil {
		return openlyrics.Song{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return openlyrics.Song{}, fmt.Errorf("read song: %w", err)
	}
	song, err := parser.Parse(raw)
	if err != nil {
		return openlyrics.Song{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return song, nil
}

// printSong writes the header and every verse page in reading order.
// Instrumental breaks are reported but not printed.
func printSong(w io.Writer, song openlyrics.Song) error {
	ew := &errWriter{w: w}

	ew.printf("= %s =\n", song.Title())
	for _, author := range song.Properties.Authors {
		if author.Type != "" {
			ew.printf("Author (%s): %s\n", author.Type, author.Name)
		} else {
			ew.printf("Author: %s\n", author.Name)
		}
	}

	for _, entry := range song.Lyrics {
		switch e := entry.(type) {
		case *openlyrics.Verse:
			ew.printf("%s:\n", e.Name)
			for _, lines := range e.Lines {
				if lines.Part != "" {
					ew.printf("(%s)\n", lines.Part)
				}
				for _, line := range openlyrics.SimplifyContents(lines.Contents) {
					ew.printf("%s\n", line)
				}
				if lines.Repeat != nil {
					ew.printf("x%d\n", *lines.Repeat)
				}
				ew.printf("\n")
			}
		case *openlyrics.Instrument:
			ew.printf("Skipping instrumental %s.\n", e.Name)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
