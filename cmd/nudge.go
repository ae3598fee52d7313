package cmd

import (
	"errors"
	"time"

	"github.com/brk3/habitledger/internal/nudge"
	"github.com/brk3/habitledger/internal/nudge/resend"
	"github.com/spf13/cobra"
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Send a reminder for habit streaks expiring within a certain window",
	Long: `The "nudge" command e-mails a reminder when yesterday's streak is still
alive, today is not yet complete and midnight is within nudge.threshold_hours.
Run it from cron.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Nudge.ResendAPIKey == "" {
			return errors.New("nudge.resend_api_key (or HABITS_RESEND_API_KEY) is not set")
		}
		if cfg.Nudge.Email == "" {
			return errors.New("nudge.email (or HABITS_NOTIFY_EMAIL) is not set")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		n := &resend.ResendNotifier{
			ApiKey: cfg.Nudge.ResendAPIKey,
			Email:  cfg.Nudge.Email,
			From:   cfg.Nudge.From,
		}
		window := time.Duration(cfg.Nudge.ThresholdHours) * time.Hour
		sent, err := nudge.Run(cmd.Context(), client(), n, now().In(loc), window)
		if err != nil {
			return err
		}
		if sent {
			cmd.Println("Nudge sent")
		} else {
			cmd.Println("No streaks at risk")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nudgeCmd)
}
