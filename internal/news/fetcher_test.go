package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finsightai/pkg/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>search results</title>
  <item>
    <title>Reliance posts record quarterly profit</title>
    <link>https://news.example/reliance-profit</link>
    <pubDate>Mon, 14 Jul 2025 08:30:00 +0530</pubDate>
  </item>
  <item>
    <title>Reliance retail arm expands</title>
    <link>https://news.example/reliance-retail</link>
    <pubDate>not a date</pubDate>
  </item>
  <item>
    <title></title>
    <link>https://news.example/empty-title</link>
  </item>
</channel>
</rss>`

func TestFetcher_FetchArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RELIANCE stock", r.URL.Query().Get("q"))
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewFetcher(config.NewsConfig{
		FeedURL:        server.URL,
		MaxArticles:    10,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())

	articles, err := f.FetchArticles(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)

	// The item without a title is dropped.
	require.Len(t, articles, 2)

	assert.Equal(t, "Reliance posts record quarterly profit", articles[0].Title)
	assert.Equal(t, "https://news.example/reliance-profit", articles[0].URL)
	require.NotNil(t, articles[0].PublishedAt)
	assert.Equal(t, 2025, articles[0].PublishedAt.Year())

	// An unparsable date keeps the article but loses the timestamp.
	assert.Nil(t, articles[1].PublishedAt)
}

func TestFetcher_FetchArticles_RespectsMaxArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	f := NewFetcher(config.NewsConfig{
		FeedURL:        server.URL,
		MaxArticles:    1,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())

	articles, err := f.FetchArticles(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestFetcher_FetchArticles_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(config.NewsConfig{FeedURL: server.URL, MaxArticles: 10, RequestTimeout: 5 * time.Second}, zap.NewNop())

	_, err := f.FetchArticles(context.Background(), "RELIANCE.NS")
	assert.Error(t, err)
}

func TestFetcher_FetchArticles_MalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not a feed"))
	}))
	defer server.Close()

	f := NewFetcher(config.NewsConfig{FeedURL: server.URL, MaxArticles: 10, RequestTimeout: 5 * time.Second}, zap.NewNop())

	_, err := f.FetchArticles(context.Background(), "RELIANCE.NS")
	assert.Error(t, err)
}
