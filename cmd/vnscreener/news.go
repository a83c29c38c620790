package main

import (
	"github.com/spf13/cobra"

	"VNScreener/internal/report"
)

var newsLimit int

func init() {
	newsCmd.Flags().IntVarP(&newsLimit, "limit", "n", 0, "number of articles (default news.limit from config)")
	rootCmd.AddCommand(newsCmd)
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "List the most recent ingested articles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.close()

		limit := a.cfg.News.Limit
		if newsLimit > 0 {
			limit = newsLimit
		}
		articles, err := a.store.RecentArticles(cmd.Context(), limit)
		if err != nil {
			return err
		}
		report.WriteNews(cmd.OutOrStdout(), articles)
		return nil
	},
}
