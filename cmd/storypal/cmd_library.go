package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLibraryCmd() *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List the completed stories in a profile's library",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			id := profileID
			if id == "" {
				profile, err := a.registry.Active(ctx)
				if err != nil {
					return err
				}
				id = profile.ID
			}

			stories, err := a.library.List(ctx, id)
			if err != nil {
				return err
			}
			if len(stories) == 0 {
				fmt.Println("No completed stories yet.")
				return nil
			}
			for _, s := range stories {
				fmt.Printf("%s  %s\n", s.ID, s.StoryGraphID)
				fmt.Printf("    played %s, %d min, choices: %s\n",
					s.LastPlayedAt.Format("2006-01-02 15:04"),
					s.CompletionTimeMinutes,
					strings.Join(s.ChoiceHistory, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profileID, "profile", "", "Profile id (defaults to the active profile)")

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete a completed story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.library.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Printf("No story with id %s\n", args[0])
				return nil
			}
			fmt.Printf("Deleted story %s\n", args[0])
			return nil
		},
	})

	return cmd
}
