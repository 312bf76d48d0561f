package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storypal-server/internal/service"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage reader profiles",
	}
	cmd.AddCommand(
		newProfileCreateCmd(),
		newProfileListCmd(),
		newProfileUseCmd(),
		newProfileDeleteCmd(),
	)
	return cmd
}

func newProfileCreateCmd() *cobra.Command {
	var (
		name      string
		age       int
		interests []string
		favorites string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new profile (the first one becomes active)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.registry.Create(cmd.Context(), service.CreateProfileParams{
				Name:               name,
				Age:                age,
				Interests:          interests,
				FavoriteCharacters: favorites,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created profile %s (%s, age %d)\n", profile.Name, profile.ID, profile.Age)
			if profile.IsActive {
				fmt.Println("This profile is now active.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().IntVar(&age, "age", 0, "Child's age, 2-8 (required)")
	cmd.Flags().StringSliceVar(&interests, "interests", nil, "Comma-separated interests")
	cmd.Flags().StringVar(&favorites, "favorites", "", "Favorite characters")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			profiles, err := a.registry.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				fmt.Println("No profiles yet. Create one with: storypal profile create")
				return nil
			}
			for _, p := range profiles {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Printf("%s %s  %s (age %d, %d stories completed)\n",
					marker, p.ID, p.Name, p.Age, p.StoriesCompleted)
				if len(p.Interests) > 0 {
					fmt.Printf("    interests: %s\n", strings.Join(p.Interests, ", "))
				}
			}
			return nil
		},
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile-id>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.registry.SetActive(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Active profile is now %s\n", args[0])
			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile-id>",
		Short: "Delete a profile and all of its stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.registry.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted profile %s and its stories\n", args[0])
			return nil
		},
	}
}
