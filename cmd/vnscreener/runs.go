package main

import (
	"github.com/spf13/cobra"

	"VNScreener/internal/report"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "number of runs")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent screen runs recorded in the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.close()

		runs, err := a.store.RecentRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		report.WriteRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}
