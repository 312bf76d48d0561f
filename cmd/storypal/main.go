package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "storypal",
		Short: "StoryPal - interactive branching stories for children",
		Long: `storypal plays pre-authored branching stories from the terminal.

Profiles own completed stories; one profile is active at a time. Pick a
theme, make choices until the story ends, and it lands in the profile's
library for replay.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newThemesCmd(),
		newProfileCmd(),
		newPlayCmd(),
		newLibraryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("storypal version %s\n", version)
		},
	}
}
