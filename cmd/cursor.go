package cmd

import (
	"github.com/brk3/habitledger/internal/server"
	"github.com/spf13/cobra"
)

var cursorCmd = &cobra.Command{
	Use:   "cursor",
	Short: "Show or move the day being viewed",
	Long: `The "cursor" command prints the day being viewed. Commands that take an
optional date act on this day when none is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cur, err := client().Cursor(cmd.Context())
		if err != nil {
			return err
		}
		printCursor(cmd, cur)
		return nil
	},
}

func printCursor(cmd *cobra.Command, cur *server.CursorResponse) {
	if cur.Date == cur.Today {
		cmd.Printf("Viewing %s (today)\n", cur.Date)
		return
	}
	cmd.Printf("Viewing %s (today is %s)\n", cur.Date, cur.Today)
}

func moveCursor(cmd *cobra.Command, req server.CursorRequest) error {
	cur, err := client().MoveCursor(cmd.Context(), req)
	if err != nil {
		return err
	}
	printCursor(cmd, cur)
	return nil
}

var cursorNextCmd = &cobra.Command{
	Use:   "next [n]",
	Short: "Move forward n days",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := countArg(args, 0)
		if err != nil {
			return err
		}
		return moveCursor(cmd, server.CursorRequest{Delta: n})
	},
}

var cursorPrevCmd = &cobra.Command{
	Use:   "prev [n]",
	Short: "Move back n days",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := countArg(args, 0)
		if err != nil {
			return err
		}
		return moveCursor(cmd, server.CursorRequest{Delta: -n})
	},
}

var cursorTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Jump back to today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveCursor(cmd, server.CursorRequest{Today: true})
	},
}

var cursorGotoCmd = &cobra.Command{
	Use:   "goto <date>",
	Short: "Jump to a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		if date == "cursor" {
			return cursorCmd.RunE(cmd, nil)
		}
		return moveCursor(cmd, server.CursorRequest{Date: date})
	},
}

func init() {
	cursorCmd.AddCommand(cursorNextCmd, cursorPrevCmd, cursorTodayCmd, cursorGotoCmd)
	rootCmd.AddCommand(cursorCmd)
}
