package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available story themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			for _, g := range a.catalog.List() {
				fmt.Printf("%s  %s\n", g.ID, g.Title)
				fmt.Printf("    %s (ages %s, %s)\n", g.Description, g.AgeRange, g.EstimatedDuration)
			}
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <theme>",
		Short: "Play a story as the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			profile, err := a.registry.Active(ctx)
			if err != nil {
				return fmt.Errorf("pick a profile first with 'storypal profile use': %w", err)
			}

			graph, err := a.catalog.GetGraph(args[0])
			if err != nil {
				return err
			}

			progression, err := a.engine.Start(ctx, graph.ID, profile.ID)
			if err != nil {
				return err
			}

			fmt.Printf("\n=== %s ===\n", graph.Title)
			reader := bufio.NewReader(os.Stdin)

			for {
				section, _ := graph.Section(progression.CurrentSectionID)
				fmt.Printf("\n%s\n", section.Text)

				if a.engine.IsComplete(progression, graph) {
					story, err := a.library.Finalize(ctx, progression, graph)
					if err != nil {
						return err
					}
					a.engine.Abandon(profile.ID)
					fmt.Printf("\nThe story is complete! Saved to %s's library (%d choices, %d min).\n",
						profile.Name, len(story.ChoiceHistory), story.CompletionTimeMinutes)
					return nil
				}

				for i, choice := range section.Choices {
					fmt.Printf("  %d) %s\n", i+1, choice.Label)
				}
				fmt.Print("> ")

				line, err := reader.ReadString('\n')
				if err != nil {
					// EOF: the reader walked away; the live progression is
					// simply dropped.
					a.engine.Abandon(profile.ID)
					fmt.Println("\nStory abandoned.")
					return nil
				}
				pick, err := strconv.Atoi(strings.TrimSpace(line))
				if err != nil || pick < 1 || pick > len(section.Choices) {
					fmt.Printf("Please enter a number between 1 and %d.\n", len(section.Choices))
					continue
				}

				progression, err = a.engine.Choose(ctx, profile.ID, section.Choices[pick-1].ID)
				if err != nil {
					return err
				}
			}
		},
	}
}
