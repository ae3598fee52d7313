package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var resetAllYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear recorded days",
}

var resetDayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Clear marks, mood and notes for one day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		if err := client().ResetDay(cmd.Context(), date); err != nil {
			return err
		}
		cmd.Printf("Reset %s\n", date)
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete every recorded day; habits are kept",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetAllYes {
			return errors.New("refusing to delete all days without --yes")
		}
		if err := client().ResetAll(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("All days deleted")
		return nil
	},
}

func init() {
	resetAllCmd.Flags().BoolVar(&resetAllYes, "yes", false, "confirm deleting every recorded day")
	resetCmd.AddCommand(resetDayCmd, resetAllCmd)
	rootCmd.AddCommand(resetCmd)
}
