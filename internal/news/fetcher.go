// Package news fetches recent article headlines for a ticker from a
// Google-News-style RSS search feed.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"finsightai/internal/service"
	"finsightai/pkg/config"
)

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Fetcher queries an RSS search feed per ticker. It implements
// service.ArticleFetcher.
type Fetcher struct {
	cfg    config.NewsConfig
	client *http.Client
	logger *zap.Logger
}

func NewFetcher(cfg config.NewsConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// FetchArticles searches the feed for the ticker's company and returns
// up to MaxArticles headlines, newest first as the feed orders them.
func (f *Fetcher) FetchArticles(ctx context.Context, ticker string) ([]service.FetchedArticle, error) {
	// "RELIANCE.NS" searches better as "RELIANCE stock".
	company := strings.TrimSuffix(ticker, ".NS")
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-IN&gl=IN&ceid=IN:en",
		f.cfg.FeedURL, url.QueryEscape(company+" stock"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned non-200 status for %s: %s", ticker, resp.Status)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed for %s: %w", ticker, err)
	}

	articles := make([]service.FetchedArticle, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if len(articles) >= f.cfg.MaxArticles {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		articles = append(articles, service.FetchedArticle{
			Title:       title,
			URL:         link,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}

	f.logger.Debug("Fetched feed",
		zap.String("ticker", ticker),
		zap.Int("items", len(feed.Channel.Items)),
		zap.Int("kept", len(articles)),
	)

	return articles, nil
}

// parsePubDate tolerates the two date layouts RSS feeds use in the
// wild. An unparsable date degrades to nil rather than dropping the item.
func parsePubDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
