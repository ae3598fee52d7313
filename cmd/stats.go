package cmd

import (
	"fmt"
	"time"

	"github.com/brk3/habitledger/internal/datekey"
	"github.com/spf13/cobra"
)

var weekCmd = &cobra.Command{
	Use:   "week [date]",
	Short: "Show completion for the week containing a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		w, err := client().Week(cmd.Context(), date)
		if err != nil {
			return err
		}
		cmd.Printf("Week %s to %s (starts %s)\n", w.Start, w.End, w.WeekStart)
		for i, d := range w.Days {
			mark := " "
			if w.PerDayComplete[i] {
				mark = "x"
			}
			cmd.Printf("[%s] %s  %3d%%\n", mark, d, w.PerDayProgress[i])
		}
		for _, h := range w.PerHabit {
			cmd.Printf("%-24s %d/7  %3d%%\n", h.Name, h.Days, h.Percent)
		}
		return nil
	},
}

var monthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Show completion for a calendar month",
	Long: `The "month" command shows overall, per-week and per-habit completion for a
month. Without an argument it uses the month of the day being viewed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client()
		var ref string
		if len(args) == 1 {
			ref = args[0] + "-01"
		} else {
			cur, err := c.Cursor(cmd.Context())
			if err != nil {
				return err
			}
			ref = cur.Date
		}
		t, err := datekey.Parse(ref, time.UTC)
		if err != nil {
			return fmt.Errorf("month must be YYYY-MM: %w", err)
		}

		m, err := c.Month(cmd.Context(), t.Year(), t.Month())
		if err != nil {
			return err
		}
		cmd.Printf("%s %d  %d%%\n", m.Month, m.Year, m.OverallPercent)
		if m.Badge != nil {
			cmd.Printf("Badge: %s (%s)\n", m.Badge.Label, m.Badge.Tier)
		}
		for _, w := range m.PerWeek {
			cmd.Printf("week %d  %s to %s  %d/%d  %3d%%\n", w.Week, w.Start, w.End, w.CompleteDays, w.Days, w.Percent)
		}
		for _, h := range m.PerHabit {
			cmd.Printf("%-24s %d/%d  %3d%%\n", h.Name, h.Days, m.DaysInMonth, h.Percent)
		}
		return nil
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List badges earned for fully complete months",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tally, err := client().Badges(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("%d of %d badges as of %s\n", tally.Earned, tally.Capacity, tally.AsOf)
		for _, b := range tally.Badges {
			cmd.Printf("%d-%02d  %s (%s)\n", b.Year, int(b.Month), b.Label, b.Tier)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weekCmd, monthCmd, badgesCmd)
}
