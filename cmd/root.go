package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sitekit",
	Short: "A CLI tool for building, verifying and deploying the Learn Jenkins site",
	Long: `sitekit renders the Learn Jenkins page, checks the built markup
against its rendering contract, and publishes the result to a static
hosting provider.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
