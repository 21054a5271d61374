package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"lyricdeck/internal/model"
	"lyricdeck/internal/slide"
)

var (
	indexStyle   = lipgloss.NewStyle().Faint(true).Width(10)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	creditStyle  = lipgloss.NewStyle().Italic(true).Faint(true)
	slideBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	playlistHead = lipgloss.NewStyle().Bold(true).Underline(true)
)

func slidesCmd() *cobra.Command {
	var playlistID uint32
	cmd := &cobra.Command{
		Use:   "slides STATE_FILE",
		Short: "Render every slide of a playlist from a state export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := readState(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("playlist") {
				first, ok := state.FirstPlaylistID()
				if !ok {
					return fmt.Errorf("%s has no playlists", args[0])
				}
				playlistID = first
			}
			return renderPlaylist(cmd.OutOrStdout(), state, playlistID)
		},
	}
	cmd.Flags().Uint32VarP(&playlistID, "playlist", "p", 0, "playlist id (defaults to the first playlist)")
	return cmd
}

func readState(path string) (*model.State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	state := &model.State{}
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", path, err)
	}
	return state, nil
}

func renderPlaylist(w io.Writer, state *model.State, playlistID uint32) error {
	playlist, ok := state.Playlist(playlistID)
	if !ok {
		return fmt.Errorf("playlist %d not found", playlistID)
	}

	var b strings.Builder
	b.WriteString(playlistHead.Render(playlist.Name))
	b.WriteString("\n")
	for _, indexed := range state.Slides(playlistID) {
		content := slide.ForSlide(state, indexed.Slide)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			indexStyle.Render(indexed.Index.String()),
			slideBox.Render(renderContent(content)),
		))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderContent(content slide.Content) string {
	var parts []string
	if content.Title != nil {
		parts = append(parts, titleStyle.Render(*content.Title))
	}
	for _, line := range content.Lines {
		style := lipgloss.NewStyle().Bold(line.Bold).Italic(line.Italic)
		parts = append(parts, style.Render(line.Text))
	}
	if content.Credit != nil {
		parts = append(parts, creditStyle.Render(*content.Credit))
	}
	if len(parts) == 0 {
		return " "
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
