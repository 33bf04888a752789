package main

import (
	"github.com/loykin/repobatch/internal/batch"
	"github.com/loykin/repobatch/internal/credential"
	"github.com/loykin/repobatch/internal/csvsource"
	"github.com/loykin/repobatch/internal/github"
	"github.com/loykin/repobatch/internal/report"
	"github.com/spf13/cobra"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Batch operations against a GitHub owner or organization",
}

var githubTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Add topics to repositories listed in a CSV file",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		csvPath, _ := cmd.Flags().GetString("csv")

		rt, err := newRuntime(ctx, "github topics", credential.GitHub)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		// A malformed CSV aborts the run before any API call is made.
		rows, err := csvsource.Load(csvPath)
		if err != nil {
			rt.failSetup(err, "failed to load CSV input")
			return
		}

		op := &github.TopicsOp{Client: rt.githubClient(), DefaultOwner: rt.cfg.Github.Owner}
		res := batch.Run(ctx, rows, op.Apply, rt.recorders()...)
		exitHandler.Exit(rt.finish(res))
	},
}

var githubSecurityConfigCmd = &cobra.Command{
	Use:   "security-config <configuration-name>",
	Short: "Attach a code security configuration to repositories listed in a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		csvPath, _ := cmd.Flags().GetString("csv")
		configName := args[0]

		rt, err := newRuntime(ctx, "github security-config", credential.GitHub)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		rows, err := csvsource.Load(csvPath)
		if err != nil {
			rt.failSetup(err, "failed to load CSV input")
			return
		}

		client := rt.githubClient()
		configID, err := client.FindSecurityConfiguration(ctx, configName)
		if err != nil {
			rt.fail(err, "failed to resolve code security configuration")
			return
		}

		op := &github.SecurityConfigOp{Client: client, ConfigID: configID}
		chunks := batch.Chunk(rows, rt.cfg.EffectiveBatchSize())
		res := batch.Run(ctx, chunks, op.Apply, rt.recorders()...)
		exitHandler.Exit(rt.finish(res))
	},
}

var githubInventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Write a CSV inventory of every repository of the owner",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		rt, err := newRuntime(ctx, "github inventory", credential.GitHub)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		client := rt.githubClient()
		repos, err := client.ListOrgRepos(ctx)
		if err != nil {
			rt.fail(err, "failed to enumerate repositories")
			return
		}

		rep := report.New(github.InventoryColumns...)
		op := &github.InventoryOp{Client: client, Report: rep}
		res := batch.Run(ctx, repos, op.Apply, rt.recorders()...)

		code := rt.finish(res)
		if err := rep.WriteCSV(out); err != nil {
			rt.logger.Error("failed to write inventory report", "error", err)
			exitHandler.Exit(exitRunFailed)
			return
		}
		rt.logger.Info("inventory report written", "path", out, "rows", rep.Len())
		exitHandler.Exit(code)
	},
}

func init() {
	githubTopicsCmd.Flags().String("csv", "", "CSV file with Repo, Owner and Topics columns")
	_ = githubTopicsCmd.MarkFlagRequired("csv")
	githubSecurityConfigCmd.Flags().String("csv", "", "CSV file with a Repo column")
	_ = githubSecurityConfigCmd.MarkFlagRequired("csv")
	githubInventoryCmd.Flags().String("out", "github_inventory.csv", "path of the CSV report to write")

	githubCmd.AddCommand(githubTopicsCmd)
	githubCmd.AddCommand(githubSecurityConfigCmd)
	githubCmd.AddCommand(githubInventoryCmd)
}
