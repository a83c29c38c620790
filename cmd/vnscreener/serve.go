package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"VNScreener/internal/ingest"
	"VNScreener/internal/notifier"
	"VNScreener/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled ingest and screening, with Telegram delivery and commands",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		var (
			tn     *notifier.TelegramNotifier
			sender scheduler.Sender
		)
		if a.cfg.TelegramEnabled() {
			tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
			sender = tn
		} else {
			a.log.Warn("telegram not configured, screen results are only recorded")
		}

		var news scheduler.NewsLister
		if a.store != nil {
			news = a.store
		}
		var in scheduler.Ingester = noIngest{}
		if a.store != nil {
			in = a.pipeline()
		}
		sched := scheduler.NewScheduler(ctx, in, a.engine(), sender, a.recorder(), news, a.cfg.News.Limit, a.log)
		if err := sched.RegisterAll(a.cfg.Schedule.IngestCron, a.cfg.Schedule.ScreenCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if tn != nil {
			go tn.StartPolling(ctx, sched.HandleCommand)
			a.log.Info("telegram polling started")
		}

		if os.Getenv("RUN_ON_START") == "true" {
			a.log.Info("RUN_ON_START enabled, running ingest and screen now")
			go func() {
				sched.RunIngestNow()
				sched.RunScreenNow()
			}()
		}

		a.log.Infow("vnscreener is running",
			"ingest_cron", a.cfg.Schedule.IngestCron,
			"screen_cron", a.cfg.Schedule.ScreenCron,
		)
		<-ctx.Done()
		a.log.Info("shutdown signal received, stopping")
		return nil
	},
}

// noIngest stands in for the pipeline when there is no database to load into.
type noIngest struct{}

func (noIngest) Run(context.Context) *ingest.Report { return &ingest.Report{} }
