package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage the list of tracked habits",
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := client().ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		if len(habits) == 0 {
			cmd.Println("No habits yet. Add one with: habitledger habit add <name>")
			return nil
		}
		for _, h := range habits {
			cmd.Printf("%-36s  %s\n", h.ID, h.Name)
		}
		return nil
	},
}

var habitAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := client().AddHabit(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		cmd.Printf("Added habit %q (%s)\n", h.Name, h.ID)
		return nil
	},
}

var habitRenameCmd = &cobra.Command{
	Use:   "rename <habit> <new name>",
	Short: "Rename a habit, keeping its history",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client()
		h, err := c.ResolveHabit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		renamed, err := c.RenameHabit(cmd.Context(), h.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		cmd.Printf("Renamed %q to %q\n", h.Name, renamed.Name)
		return nil
	},
}

var habitRemoveCmd = &cobra.Command{
	Use:     "rm <habit>",
	Aliases: []string{"remove"},
	Short:   "Remove a habit and its marks from every day",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client()
		h, err := c.ResolveHabit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := c.RemoveHabit(cmd.Context(), h.ID); err != nil {
			return err
		}
		cmd.Printf("Removed habit %q\n", h.Name)
		return nil
	},
}

func init() {
	habitCmd.AddCommand(habitListCmd, habitAddCmd, habitRenameCmd, habitRemoveCmd)
	rootCmd.AddCommand(habitCmd)
}
