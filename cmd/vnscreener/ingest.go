package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load RSS news, the financials folder and the dividend calendar into the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.close()

		rep := a.pipeline().Run(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "news: %d new articles\n", rep.NewArticles)
		fmt.Fprintf(out, "financials: %d values\n", rep.FinancialRows)
		fmt.Fprintf(out, "dividends: %d records\n", rep.Dividends)
		for _, step := range []struct {
			name string
			err  error
		}{{"news", rep.NewsErr}, {"financials", rep.FinancialsErr}, {"dividends", rep.DividendsErr}} {
			if step.err != nil {
				fmt.Fprintf(out, "warning: %s: %v\n", step.name, step.err)
			}
		}
		return nil
	},
}
