package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "repobatch",
	Short: "Apply bulk API updates across Azure DevOps and GitHub repositories",
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "./config.yaml")
	v.SetDefault("debug", false)

	// Environment variables support: REPOBATCH_CONFIG, REPOBATCH_DEBUG, ...
	v.SetEnvPrefix("REPOBATCH")
	v.AutomaticEnv()
	// Bind flags via Cobra and then bind to Viper
	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the config yaml")
	rootCmd.PersistentFlags().Bool("debug", v.GetBool("debug"), "debug logging plus a masked HTTP trace file")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(adoCmd)
	rootCmd.AddCommand(githubCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
