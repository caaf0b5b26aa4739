package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsArticle is an upsert-only record keyed by URL.
type NewsArticle struct {
	ID          uuid.UUID  `db:"id"`
	SecurityID  int64      `db:"security_id"`
	Title       string     `db:"title"`
	URL         string     `db:"url"`
	PublishedAt *time.Time `db:"published_at"`
	Content     string     `db:"content"`
	Embedding   []float32  `db:"embedding"`
}

func NewNewsArticle(securityID int64, title, url string, publishedAt *time.Time, content string, embedding []float32) *NewsArticle {
	return &NewsArticle{
		ID:          uuid.New(),
		SecurityID:  securityID,
		Title:       title,
		URL:         url,
		PublishedAt: publishedAt,
		Content:     content,
		Embedding:   embedding,
	}
}
