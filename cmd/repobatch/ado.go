package main

import (
	"errors"

	"github.com/loykin/repobatch/internal/ado"
	"github.com/loykin/repobatch/internal/batch"
	"github.com/loykin/repobatch/internal/credential"
	"github.com/loykin/repobatch/internal/report"
	"github.com/spf13/cobra"
)

var adoCmd = &cobra.Command{
	Use:   "ado",
	Short: "Batch operations against an Azure DevOps organization",
}

var adoReportStatusCmd = &cobra.Command{
	Use:   "report-status",
	Short: "Set reportBuildStatus on every build definition in the organization",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		enable, _ := cmd.Flags().GetBool("enable")

		rt, err := newRuntime(ctx, "ado report-status", credential.AzureDevOps)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		client := rt.adoClient()
		targets, err := client.EnumerateDefinitions(ctx)
		if err != nil {
			rt.fail(err, "failed to enumerate build definitions")
			return
		}

		op := &ado.ReportStatusOp{Client: client, Enable: enable}
		res := batch.Run(ctx, targets, op.Apply, rt.recorders()...)
		exitHandler.Exit(rt.finish(res))
	},
}

var adoPipelineSourceCmd = &cobra.Command{
	Use:   "pipeline-source",
	Short: "Rewrite pipeline YAML to pull from GitHub and open pull requests",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx, "ado pipeline-source", credential.AzureDevOps)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		if rt.cfg.AzureDevOps.GithubConnection == "" {
			rt.failSetup(errors.New("azure_devops.github_connection is not configured"), "run setup failed")
			return
		}
		client := rt.adoClient()
		targets, err := client.EnumerateRepositories(ctx)
		if err != nil {
			rt.fail(err, "failed to enumerate repositories")
			return
		}

		op := &ado.PipelineSourceOp{Client: client, GithubConnection: rt.cfg.AzureDevOps.GithubConnection}
		res := batch.Run(ctx, targets, op.Apply, rt.recorders()...)
		exitHandler.Exit(rt.finish(res))
	},
}

var adoInventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Write a CSV inventory of every repository in the organization",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")

		rt, err := newRuntime(ctx, "ado inventory", credential.AzureDevOps)
		if err != nil {
			exitHandler.LogSetupError(err, "run setup failed")
			return
		}
		client := rt.adoClient()
		targets, err := client.EnumerateRepositories(ctx)
		if err != nil {
			rt.fail(err, "failed to enumerate repositories")
			return
		}

		rep := report.New(ado.InventoryColumns...)
		op := &ado.InventoryOp{Client: client, Report: rep}
		res := batch.Run(ctx, targets, op.Apply, rt.recorders()...)

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
	adoReportStatusCmd.Flags().Bool("enable", true, "value to set reportBuildStatus to")
	adoInventoryCmd.Flags().String("out", "ado_inventory.csv", "path of the CSV report to write")

	adoCmd.AddCommand(adoReportStatusCmd)
	adoCmd.AddCommand(adoPipelineSourceCmd)
	adoCmd.AddCommand(adoInventoryCmd)
}
