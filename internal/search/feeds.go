package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/blkoutuk/research-agent/internal/core/model"
)

// FeedReader pulls recent items from community RSS feeds. Feeds complement
// web search: they surface publications the general index ranks poorly.
type FeedReader struct {
	parser *gofeed.Parser
	urls   []string
}

func NewFeedReader(urls []string) *FeedReader {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 20 * time.Second}
	return &FeedReader{parser: parser, urls: urls}
}

// Fetch reads every configured feed and flattens the items into search
// results. A feed that fails to parse is logged and skipped; the returned
// error is non-nil only when every feed failed.
func (f *FeedReader) Fetch(ctx context.Context) ([]model.SearchResult, error) {
	var results []model.SearchResult
	var failed int
	var lastErr error

	for _, feedURL := range f.urls {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("feeds: %s failed: %v", feedURL, err)
			failed++
			lastErr = err
			continue
		}
		for _, item := range feed.Items {
			if item.Link == "" {
				continue
			}
			results = append(results, model.SearchResult{
				Title:         strings.TrimSpace(item.Title),
				URL:           item.Link,
				Snippet:       strings.TrimSpace(item.Description),
				Source:        feed.Title,
				PublishedDate: publishedDate(item),
			})
		}
	}

	if failed > 0 && failed == len(f.urls) {
		return results, fmt.Errorf("all %d feeds failed: %w", failed, lastErr)
	}
	return results, nil
}

func publishedDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Format("2006-01-02")
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.Format("2006-01-02")
	}
	return ""
}
