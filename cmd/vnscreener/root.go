package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"VNScreener/internal/config"
	"VNScreener/internal/ingest"
	"VNScreener/internal/prices"
	"VNScreener/internal/screener"
	"VNScreener/internal/store"
)

const defaultConfigPath = "configs/config.yaml"

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
}

var rootCmd = &cobra.Command{
	Use:           "vnscreener",
	Short:         "Economic news and stock screener for Vietnamese equities",
	Long:          `Ingest financial news and market data for Vietnamese equities and screen for candidates that combine fundamental, technical and dividend criteria.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	store *store.SQLiteStore // nil when the database could not be opened
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return defaultConfigPath
}

// setup loads configuration, builds the logger and opens the store. When
// requireStore is false a database failure is logged and the command runs
// without persistence.
func setup(requireStore bool) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	zl, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log := zl.Sugar()

	a := &app{cfg: cfg, log: log}
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath, log)
	if err != nil {
		if requireStore {
			return nil, fmt.Errorf("open store: %w", err)
		}
		log.Warnw("sqlite store unavailable, screening without stored data", "err", err)
	} else {
		a.store = st
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warnw("close store", "err", err)
		}
	}
	_ = a.log.Sync()
}

func (a *app) pipeline() *ingest.Pipeline {
	return ingest.NewPipeline(a.cfg, a.store, a.log)
}

// engine wires the store and the configured price source into a screen
// engine. Without a store the fundamental and dividend inputs are
// unavailable.
func (a *app) engine() *screener.Engine {
	var (
		fp screener.FinancialsProvider
		dp screener.DividendProvider
	)
	if a.store != nil {
		fp, dp = a.store, a.store
	}
	return screener.NewEngine(fp, prices.NewSource(a.cfg, a.log), dp, a.cfg.ScreenRules(), a.log)
}

func (a *app) recorder() store.Recorder {
	if a.store == nil {
		return store.NewNoopRecorder()
	}
	return a.store
}
