package main

import (
	"github.com/spf13/cobra"

	"VNScreener/internal/report"
)

var screenIngest bool

func init() {
	screenCmd.Flags().BoolVar(&screenIngest, "ingest", false, "run the ingest pipeline before screening")
	rootCmd.AddCommand(screenCmd)
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run the fundamental and technical screens and print the candidate table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		if screenIngest && a.store != nil {
			a.pipeline().Run(ctx)
		}
		res := a.engine().Evaluate(ctx)
		if err := a.recorder().RecordRun(ctx, res); err != nil {
			a.log.Warnw("record screen run", "err", err)
		}
		report.WriteResult(cmd.OutOrStdout(), res)
		return nil
	},
}
