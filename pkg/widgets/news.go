package widgets

import (
	"context"
	"sync"
	"time"
)

// Article is one headline.
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url,omitempty"`
}

// NewsData is the news panel. Current rotates through Articles.
type NewsData struct {
	Current  Article   `json:"current"`
	Index    int       `json:"index"`
	Articles []Article `json:"articles"`
}

// DefaultArticles are shown when no headlines are configured.
func DefaultArticles() []Article {
	return []Article{
		{
			Title:       "New Technology Breakthrough in Quantum Computing",
			Summary:     "Scientists achieve major milestone in quantum error correction...",
			Source:      "Tech News",
			PublishedAt: time.Date(2025, time.June, 14, 8, 30, 0, 0, time.UTC),
		},
		{
			Title:       "Climate Summit Reaches Historic Agreement",
			Summary:     "World leaders commit to ambitious carbon reduction targets...",
			Source:      "Global News",
			PublishedAt: time.Date(2025, time.June, 14, 7, 15, 0, 0, time.UTC),
		},
		{
			Title:       "Space Mission Returns with Asteroid Samples",
			Summary:     "NASA's latest mission successfully brings back materials...",
			Source:      "Space Today",
			PublishedAt: time.Date(2025, time.June, 13, 22, 45, 0, 0, time.UTC),
		},
	}
}

// News rotates through a fixed list of headlines every five seconds.
type News struct {
	articles []Article

	mu   sync.Mutex
	next int
}

// NewNews rotates articles, or DefaultArticles when empty.
func NewNews(articles []Article) *News {
	if len(articles) == 0 {
		articles = DefaultArticles()
	}
	return &News{articles: articles}
}

func (n *News) ID() string              { return "news" }
func (n *News) Interval() time.Duration { return 5 * time.Second }

func (n *News) Refresh(_ context.Context) (any, error) {
	n.mu.Lock()
	i := n.next
	n.next = (n.next + 1) % len(n.articles)
	n.mu.Unlock()

	return NewsData{
		Current:  n.articles[i],
		Index:    i,
		Articles: append([]Article(nil), n.articles...),
	}, nil
}
