// Package wrapped turns one uploaded archive into a year-in-review report.
package wrapped

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/analysis"
	"github.com/neilberkman/gptwrapped/internal/core/topics"
	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// NoTopicsMessage is shown instead of topics when extraction has nothing to say
const NoTopicsMessage = "Not enough conversations to extract topics (need at least 10)."

// TopicsUnavailableMessage is shown instead of topics when extraction failed
const TopicsUnavailableMessage = "Topics unavailable."

// Options control report generation
type Options struct {
	Year         int // 0 means the current year
	WordsPerBook int
	TopTopics    int
}

// Report holds everything computed for one archive and year
type Report struct {
	Year               int                          `json:"year"`
	FileHash           string                       `json:"file_hash,omitempty"`
	TotalConversations int                          `json:"total_conversations"`
	TotalMessages      int                          `json:"total_messages"`
	UserMessages       int                          `json:"user_messages"`
	UserWords          int                          `json:"user_words"`
	Books              float64                      `json:"books"`
	Monthly            []analysis.MonthCount        `json:"monthly"`
	Longest            analysis.LongestConversation `json:"longest_conversation"`

	// Year-filtered messages, kept for the topic stage
	Messages []chatexport.ExtractedMessage `json:"-"`
}

// Builder runs the extraction and aggregation pipeline
type Builder struct {
	opts   Options
	topics topics.Extractor
	log    zerolog.Logger
}

// NewBuilder creates a builder. extractor may be nil to disable topics.
func NewBuilder(opts Options, extractor topics.Extractor, log zerolog.Logger) *Builder {
	if opts.Year == 0 {
		opts.Year = time.Now().Year()
	}
	if opts.WordsPerBook <= 0 {
		opts.WordsPerBook = 70000
	}
	if opts.TopTopics <= 0 {
		opts.TopTopics = 5
	}
	return &Builder{opts: opts, topics: extractor, log: log}
}

// ForYear returns a builder sharing b's settings but targeting year
func (b *Builder) ForYear(year int) *Builder {
	opts := b.opts
	opts.Year = year
	return NewBuilder(opts, b.topics, b.log)
}

// Year returns the year reports are built for
func (b *Builder) Year() int {
	return b.opts.Year
}

// Build extracts every conversation, keeps the target year and computes the
// totals. An empty or out-of-year archive yields a zero report.
func (b *Builder) Build(conversations []chatexport.Conversation, progress ProgressCallback) *Report {
	var all []chatexport.ExtractedMessage

	for i := range conversations {
		conv := &conversations[i]
		title := conv.DisplayTitle()

		for _, msg := range chatexport.Extract(conv) {
			msg.ConversationID = conv.ID
			msg.ConversationTitle = title
			all = append(all, msg)
		}

		if progress != nil {
			progress.Update(title)
		}
	}

	messages := analysis.FilterByYear(all, b.opts.Year)
	userMessages := analysis.FilterByAuthor(messages, chatexport.AuthorUser)
	userWords := analysis.WordCount(userMessages)

	report := &Report{
		Year:               b.opts.Year,
		TotalConversations: analysis.CountConversations(messages),
		TotalMessages:      len(messages),
		UserMessages:       len(userMessages),
		UserWords:          userWords,
		Books:              float64(userWords) / float64(b.opts.WordsPerBook),
		Monthly:            analysis.MonthlyHistogram(messages),
		Longest:            analysis.FindLongestConversation(conversations),
		Messages:           messages,
	}
	report.FileHash, _ = userstats.Fingerprint(conversations)

	b.log.Debug().
		Int("conversations", len(conversations)).
		Int("extracted", len(all)).
		Int("in_year", len(messages)).
		Int("year", b.opts.Year).
		Msg("Built report")

	return report
}

// Topics runs the topic stage for a report. It is separate from Build because
// it is the slow step and may fail without affecting the rest of the report.
// A nil result with a nil error means there is nothing to show.
func (b *Builder) Topics(ctx context.Context, report *Report) ([]topics.Topic, error) {
	if b.topics == nil {
		return nil, nil
	}

	titles := topics.CollectTitles(report.Messages)
	result, err := b.topics.ExtractTopics(ctx, titles, b.opts.TopTopics)
	if errors.Is(err, topics.ErrNotEnoughTitles) {
		b.log.Info().Int("titles", len(titles)).Msg("Skipping topics")
		return nil, nil
	}
	if err != nil {
		b.log.Info().Err(err).Msg("Topic extraction failed")
		return nil, err
	}
	return result, nil
}
