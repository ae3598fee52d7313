package cmd

import (
	"github.com/brk3/habitledger/pkg/habit"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Show one day: habits, progress, streaks, mood and notes",
	Long: `The "day" command shows the record for a date. The date is YYYY-MM-DD,
today, yesterday or cursor; it defaults to the day currently being viewed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		c := client()
		summary, err := c.Day(cmd.Context(), date)
		if err != nil {
			return err
		}
		habits, err := c.ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		printDay(cmd, summary, habits)
		return nil
	},
}

func printDay(cmd *cobra.Command, s *habit.DaySummary, habits []habit.Habit) {
	status := ""
	if s.Complete {
		status = "  complete"
	}
	cmd.Printf("%s  %d%%%s\n", s.Date, s.Progress, status)
	cmd.Printf("streak: %d (longest %d)\n", s.CurrentStreak, s.LongestStreak)
	for _, h := range habits {
		mark := " "
		if s.Record.Habits[h.ID] {
			mark = "x"
		}
		cmd.Printf("[%s] %s\n", mark, h.Name)
	}
	if s.Record.Mood != habit.MoodUnset {
		cmd.Printf("mood: %s\n", s.Record.Mood)
	}
	if s.Record.Notes != "" {
		cmd.Printf("notes: %s\n", s.Record.Notes)
	}
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <habit> [date]",
	Short: "Flip a habit between done and not done",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 1)
		if err != nil {
			return err
		}
		c := client()
		h, err := c.ResolveHabit(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		done, err := c.Toggle(cmd.Context(), date, h.ID)
		if err != nil {
			return err
		}
		state := "not done"
		if done {
			state = "done"
		}
		cmd.Printf("%s: %s\n", h.Name, state)
		return nil
	},
}

var moodCmd = &cobra.Command{
	Use:   "mood <low|meh|good|great|1-4|unset> [date]",
	Short: "Record how the day felt",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := habit.ParseMood(args[0])
		if err != nil {
			return err
		}
		date, err := dateArg(args, 1)
		if err != nil {
			return err
		}
		if err := client().SetMood(cmd.Context(), date, args[0]); err != nil {
			return err
		}
		cmd.Printf("Mood set to %s\n", m)
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes <text> [date]",
	Short: "Replace the day's notes; pass \"\" to clear them",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 1)
		if err != nil {
			return err
		}
		if err := client().SetNotes(cmd.Context(), date, args[0]); err != nil {
			return err
		}
		cmd.Println("Notes saved")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dayCmd, toggleCmd, moodCmd, notesCmd)
}
