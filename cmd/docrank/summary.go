package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/output"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <analysis.json>",
	Short: "Print a text report for a per-document analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := output.LoadOutput(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output.CreateSummaryReport(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
