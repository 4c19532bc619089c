package wrapped

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/topics"
	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// Request describes one analysis run
type Request struct {
	Year     int    // 0 uses the builder's year
	Name     string // optional display name for the headline
	NoSave   bool   // skip persistence and comparison
	Progress ProgressCallback
}

// Result is everything shown for one archive
type Result struct {
	Report        *Report        `json:"report"`
	Headline      string         `json:"headline"`
	Comparison    *Comparison    `json:"comparison"`
	Topics        []topics.Topic `json:"topics"`
	TopicsMessage string         `json:"topics_message,omitempty"`
}

// Service runs the full pipeline: build, compare, topics, headline
type Service struct {
	builder  *Builder
	comparer *Comparer
	template string
	log      zerolog.Logger
}

// NewService wires the pipeline stages. comparer may be nil to disable
// persistence entirely.
func NewService(builder *Builder, comparer *Comparer, template string, log zerolog.Logger) *Service {
	return &Service{builder: builder, comparer: comparer, template: template, log: log}
}

// Analyze produces a Result for conversations. Comparison and topics are
// best effort; only cancellation aborts the run.
func (s *Service) Analyze(ctx context.Context, conversations []chatexport.Conversation, req Request) (*Result, error) {
	builder := s.builder
	if req.Year != 0 && req.Year != builder.Year() {
		builder = builder.ForYear(req.Year)
	}

	report := builder.Build(conversations, req.Progress)
	if req.Progress != nil {
		req.Progress.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Report: report, Comparison: &Comparison{}}

	if s.comparer != nil && !req.NoSave {
		result.Comparison = s.comparer.SaveAndCompare(ctx, report)
	}

	found, err := builder.Topics(ctx, report)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		result.TopicsMessage = TopicsUnavailableMessage
	case len(found) == 0:
		result.TopicsMessage = NoTopicsMessage
	}
	result.Topics = found

	headline, err := RenderHeadline(s.template, report, req.Name)
	if err != nil {
		s.log.Warn().Err(err).Msg("Invalid report template")
	}
	result.Headline = headline

	return result, nil
}
