package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"VNScreener/internal/ingest"
	"VNScreener/internal/model"
	"VNScreener/internal/notifier"
	"VNScreener/internal/screener"
	"VNScreener/internal/store"
)

// Ingester loads fresh data into the store.
type Ingester interface {
	Run(ctx context.Context) *ingest.Report
}

// Evaluator runs one screen cycle.
type Evaluator interface {
	Evaluate(ctx context.Context) *screener.Result
}

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NewsLister returns recent articles.
type NewsLister interface {
	RecentArticles(ctx context.Context, limit int) ([]model.Article, error)
}

// Scheduler manages the cron tasks. Ingest and screen never overlap.
type Scheduler struct {
	Cron      *cron.Cron
	Ingest    Ingester
	Engine    Evaluator
	Notifier  Sender // nil when Telegram is not configured
	Recorder  store.Recorder
	News      NewsLister
	NewsLimit int
	Ctx       context.Context

	mu  sync.Mutex
	log *zap.SugaredLogger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, in Ingester, ev Evaluator, tn Sender, rec store.Recorder, news NewsLister, newsLimit int, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if rec == nil {
		rec = store.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		Ingest:    in,
		Engine:    ev,
		Notifier:  tn,
		Recorder:  rec,
		News:      news,
		NewsLimit: newsLimit,
		Ctx:       ctx,
		log:       log,
	}
}

// RegisterAll registers the ingest and screen tasks.
func (s *Scheduler) RegisterAll(ingestCron, screenCron string) error {
	if _, err := s.Cron.AddFunc(ingestCron, func() { s.RunIngestNow() }); err != nil {
		return fmt.Errorf("register ingest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(screenCron, func() { s.RunScreenNow() }); err != nil {
		return fmt.Errorf("register screen task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunIngestNow runs the ingest pipeline immediately.
func (s *Scheduler) RunIngestNow() *ingest.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("running ingest task")
	rep := s.Ingest.Run(s.Ctx)
	if err := rep.Err(); err != nil {
		s.trySend("⚠️ Nạp dữ liệu chưa hoàn tất:\n" + truncate(err.Error(), 500))
	}
	return rep
}

// RunScreenNow evaluates, records and sends the candidate table.
func (s *Scheduler) RunScreenNow() *screener.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info("running screen task")
	res := s.Engine.Evaluate(s.Ctx)
	if err := s.Recorder.RecordRun(s.Ctx, res); err != nil {
		s.log.Errorw("record screen run failed", "run_id", res.RunID, "err", err)
	}
	s.trySend(notifier.FormatScreenReport(res))
	return res
}

// HandleCommand processes a Telegram command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	cmd := strings.Fields(command)
	if len(cmd) == 0 {
		return notifier.FormatHelp()
	}
	// Commands may arrive as /screen@BotName in group chats.
	name, _, _ := strings.Cut(strings.ToLower(cmd[0]), "@")
	switch name {
	case "/screen":
		s.RunScreenNow()
		return ""
	case "/news":
		if s.News == nil {
			return notifier.FormatNews(nil)
		}
		articles, err := s.News.RecentArticles(ctx, s.NewsLimit)
		if err != nil {
			s.log.Errorw("load news failed", "err", err)
			return "❌ Không tải được tin tức."
		}
		return notifier.FormatNews(articles)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Errorw("send notification failed", "err", err)
	}
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
