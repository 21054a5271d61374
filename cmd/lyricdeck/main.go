package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lyricdeck",
		Short:         "Lyrics playlists and live slide presentation",
		SilenceUsage: true,
	}
	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		printCmd(),
		slidesCmd(),
		hashPasswordCmd(),
	)
	return root
}
