package cmd

import (
	"errors"

	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/storage/flatfile"
	"github.com/brk3/habitledger/internal/tracker"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [legacy.json]",
	Short: "Copy data from a legacy JSON file into the configured store",
	Long: `The "migrate" command imports the habits and day records of a legacy JSON
file into the configured storage backend. It runs once: later runs, or runs
against a store that already holds data, change nothing. The file defaults to
storage.legacy_path. Stop the server first; it holds the store open.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Storage.LegacyPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no legacy file given and storage.legacy_path is not set")
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := tracker.Migrate(cmd.Context(), flatfile.Open(path), store, now())
		if err != nil {
			return err
		}
		if res.Skipped {
			logger.Info("Migration skipped", "reason", res.Reason, "legacy", path)
			cmd.Printf("Nothing to do: %s\n", res.Reason)
			return nil
		}
		logger.Info("Migration complete", "legacy", path, "habits", res.Habits, "days", res.Days)
		cmd.Printf("Migrated %d habits and %d days\n", res.Habits, res.Days)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
