package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"VNScreener/internal/config"
	"VNScreener/internal/httpx"
	"VNScreener/internal/model"
)

const maxSummaryRunes = 500

// RSSFetcher downloads and parses RSS/Atom feeds.
type RSSFetcher struct {
	Client *http.Client
	parser *gofeed.Parser
	log    *zap.SugaredLogger
}

// NewRSSFetcher creates a fetcher using the given proxy (may be empty).
func NewRSSFetcher(proxyURL string, log *zap.SugaredLogger) *RSSFetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RSSFetcher{
		Client: httpx.NewClient(proxyURL),
		parser: gofeed.NewParser(),
		log:    log,
	}
}

// Fetch downloads one feed and converts its items to articles. Items without
// a link are dropped.
func (f *RSSFetcher) Fetch(ctx context.Context, src config.NewsSource) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpx.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: status %d, body: %s", src.Name, resp.StatusCode, string(body))
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}

	now := time.Now()
	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		a := model.Article{
			Source:    src.Name,
			Title:     strings.TrimSpace(item.Title),
			Link:      link,
			Summary:   plainText(item.Description),
			FetchedAt: now,
		}
		switch {
		case item.PublishedParsed != nil:
			t := *item.PublishedParsed
			a.PublishedAt = &t
		case item.UpdatedParsed != nil:
			t := *item.UpdatedParsed
			a.PublishedAt = &t
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// FetchAll fetches every source. A failing source is logged and skipped;
// its error is joined into the returned error.
func (f *RSSFetcher) FetchAll(ctx context.Context, sources []config.NewsSource) ([]model.Article, error) {
	var (
		all  []model.Article
		errs []error
	)
	for _, src := range sources {
		items, err := f.Fetch(ctx, src)
		if err != nil {
			f.log.Warnw("rss source failed", "source", src.Name, "err", err)
			errs = append(errs, err)
			continue
		}
		f.log.Debugw("rss source fetched", "source", src.Name, "items", len(items))
		all = append(all, items...)
	}
	return all, errors.Join(errs...)
}

// plainText strips markup from a feed summary and collapses whitespace.
func plainText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxSummaryRunes {
		text = string(r[:maxSummaryRunes]) + "…"
	}
	return text
}
