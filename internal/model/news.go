package model

import (
	"sort"
	"time"
)

// Article is a news item ingested from an RSS source.
type Article struct {
	ID          int64
	Source      string
	Title       string
	Link        string
	PublishedAt *time.Time
	Summary     string
	FetchedAt   time.Time
}

// SortArticles orders articles newest first. Articles without a publish time
// sort after all dated ones; ties fall back to ID descending.
func SortArticles(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i].PublishedAt, articles[j].PublishedAt
		switch {
		case a == nil && b == nil:
			return articles[i].ID > articles[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return articles[i].ID > articles[j].ID
		}
	})
}
