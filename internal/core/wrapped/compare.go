package wrapped

import (
	"context"
	"sync"

	"github.com/neilberkman/gptwrapped/internal/core/models"
	"github.com/neilberkman/gptwrapped/internal/core/userstats"
)

// PowerUserPercentile is the words percentile at which a user is a power user
const PowerUserPercentile = 90

// Comparison places a report among every archive seen so far. Percentiles are
// nil when no comparison is available.
type Comparison struct {
	Saved                   bool                `json:"saved"`
	WordsPercentile         *float64            `json:"words_percentile"`
	ConversationsPercentile *float64            `json:"conversations_percentile"`
	MessagesPercentile      *float64            `json:"messages_percentile"`
	Summary                 models.StatsSummary `json:"summary"`
}

// Available reports whether there is anything to compare against
func (c *Comparison) Available() bool {
	return c.WordsPercentile != nil
}

// PowerUser reports whether the user is in the top tenth by words
func (c *Comparison) PowerUser() bool {
	return c.WordsPercentile != nil && *c.WordsPercentile >= PowerUserPercentile
}

// Top converts a percentile into the "top X%" figure
func Top(percentile float64) float64 {
	return 100 - percentile
}

type compareKey struct {
	fileHash      string
	words         int
	conversations int
	messages      int
}

// Comparer saves a report's totals and compares them, at most once per
// distinct upload.
type Comparer struct {
	store *userstats.Store

	mu    sync.Mutex
	cache map[compareKey]*Comparison
}

// NewComparer creates a comparer backed by store
func NewComparer(store *userstats.Store) *Comparer {
	return &Comparer{store: store, cache: make(map[compareKey]*Comparison)}
}

// SaveAndCompare persists the report's totals and returns percentiles and
// averages. Archives without a fingerprint are neither saved nor compared.
func (c *Comparer) SaveAndCompare(ctx context.Context, report *Report) *Comparison {
	if report.FileHash == "" {
		return &Comparison{}
	}

	key := compareKey{
		fileHash:      report.FileHash,
		words:         report.UserWords,
		conversations: report.TotalConversations,
		messages:      report.TotalMessages,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[key]; ok {
		return cached
	}

	cmp := &Comparison{
		Saved: c.store.Upsert(ctx, report.FileHash, report.UserWords, report.TotalConversations, report.TotalMessages),
	}
	cmp.WordsPercentile = c.percentile(ctx, report.FileHash, models.MetricWords)
	cmp.ConversationsPercentile = c.percentile(ctx, report.FileHash, models.MetricConversations)
	cmp.MessagesPercentile = c.percentile(ctx, report.FileHash, models.MetricMessages)
	cmp.Summary, _ = c.store.Summary(ctx)

	// Failed saves are retried on the next identical upload
	if cmp.Saved {
		c.cache[key] = cmp
	}
	return cmp
}

func (c *Comparer) percentile(ctx context.Context, fileHash string, metric models.Metric) *float64 {
	pct, ok := c.store.Percentile(ctx, fileHash, metric)
	if !ok {
		return nil
	}
	return &pct
}
