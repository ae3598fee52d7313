package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brk3/habitledger/internal/apiclient"
	"github.com/brk3/habitledger/internal/config"
	"github.com/brk3/habitledger/internal/datekey"
	"github.com/brk3/habitledger/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config

	// now is swapped in tests.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "habitledger",
	Short: "Track daily habits, mood and notes",
	Long: `
	habitledger keeps a per-day record of which habits were done, how the day
	felt and a free-text note. It computes streaks, weekly and monthly
	completion, and badges for fully complete months. The "serve" command runs
	the tracker behind an HTTP API; every other command talks to that API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HABITS_CONFIG or ./config.yaml)")
}

func loadConfig() error {
	path := cfgFile
	if path == "" {
		path = config.Path()
	}
	c, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("error loading config file: %w", err)
	}
	if err := logger.Setup(c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	cfg = c
	return nil
}

func client() *apiclient.Client {
	return apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
}

// dateArg returns the date the API should act on for the optional
// positional argument at i. Missing means the viewed day.
func dateArg(args []string, i int) (string, error) {
	if len(args) <= i {
		return "cursor", nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", err
	}
	switch arg := args[i]; arg {
	case "cursor":
		return arg, nil
	case "today":
		return datekey.Key(now().In(loc)), nil
	case "yesterday":
		return datekey.Key(datekey.AddDays(now().In(loc), -1)), nil
	default:
		if _, err := datekey.Parse(arg, loc); err != nil {
			return "", fmt.Errorf("date must be YYYY-MM-DD, today, yesterday or cursor: %w", err)
		}
		return arg, nil
	}
}

// countArg parses the optional step count at i, defaulting to 1.
func countArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("count must be a positive integer, got %q", args[i])
	}
	return n, nil
}
