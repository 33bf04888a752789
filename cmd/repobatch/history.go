package main

import (
	"errors"
	"fmt"

	"github.com/loykin/repobatch/internal/config"
	"github.com/loykin/repobatch/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded run history from the store, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := &config.ConfigDoc{}
		if err := cfg.Load(viper.GetString("config")); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.SetupLogging(); err != nil {
			return err
		}

		st, err := store.New(cfg.StoreConfig())
		if err != nil {
			return err
		}
		if st == nil {
			return errors.New("run-history store is disabled in config")
		}
		if err := st.Connect(); err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		runs, err := st.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		fmt.Printf("%-5s %-24s %-20s %-20s %-8s %7s %6s\n",
			"ID", "COMMAND", "ORG", "STARTED", "RESULT", "TARGETS", "FAILED")
		for _, r := range runs {
			result := "failed"
			if r.Succeeded {
				result = "ok"
			} else if r.FinishedAt == "" {
				result = "aborted"
			}
			fmt.Printf("%-5d %-24s %-20s %-20s %-8s %7d %6d\n",
				r.ID, r.Command, r.Organization, r.StartedAt, result, r.Targets, r.Failed)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "show up to N latest runs")
}
