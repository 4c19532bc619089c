// Package userstats compares an archive's totals against every archive seen
// before. Failures are logged and reported as absent results; they never
// abort the caller's pipeline.
package userstats

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/db"
	"github.com/neilberkman/gptwrapped/internal/core/models"
	"github.com/neilberkman/gptwrapped/internal/core/pgstore"
)

// Backend is a durable table of StatsRecord keyed by fingerprint
type Backend interface {
	UpsertStats(ctx context.Context, rec models.StatsRecord) error
	GetStatsRecord(ctx context.Context, fileHash string) (*models.StatsRecord, error)
	Percentile(ctx context.Context, fileHash string, metric models.Metric) (float64, bool, error)
	Summary(ctx context.Context) (models.StatsSummary, error)
	Close() error
}

// Opener opens a backend for the duration of one operation
type Opener func(ctx context.Context) (Backend, error)

// SQLiteOpener opens the SQLite database at path
func SQLiteOpener(path string) Opener {
	return func(ctx context.Context) (Backend, error) {
		database, err := db.New(path)
		if err != nil {
			return nil, err
		}
		return database, nil
	}
}

// PostgresOpener connects to the PostgreSQL database at dsn
func PostgresOpener(dsn string) Opener {
	return func(ctx context.Context) (Backend, error) {
		store, err := pgstore.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// Store opens the backend per operation; no connection outlives a call.
// Concurrent writers are serialized by the backend's own locking.
type Store struct {
	open Opener
	log  zerolog.Logger
}

// New creates a store that uses open for every operation
func New(open Opener, log zerolog.Logger) *Store {
	return &Store{open: open, log: log.With().Str("component", "userstats").Logger()}
}

func (s *Store) with(ctx context.Context, op string, fn func(Backend) error) (err error) {
	b, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := b.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store after %s: %w", op, cerr)
		}
	}()
	return fn(b)
}

// Upsert records the totals for fileHash, overwriting any earlier upload
// with the same fingerprint. It returns false if the write failed.
func (s *Store) Upsert(ctx context.Context, fileHash string, totalWords, totalConversations, totalMessages int) bool {
	rec := models.StatsRecord{
		FileHash:           fileHash,
		TotalWords:         totalWords,
		TotalConversations: totalConversations,
		TotalMessages:      totalMessages,
	}

	err := s.with(ctx, "upsert", func(b Backend) error {
		return b.UpsertStats(ctx, rec)
	})
	if err != nil {
		s.log.Error().Err(err).Str("file_hash", fileHash).Msg("Error saving user stats")
		return false
	}
	return true
}

// Record returns the stored record for fileHash, or nil
func (s *Store) Record(ctx context.Context, fileHash string) *models.StatsRecord {
	var rec *models.StatsRecord
	err := s.with(ctx, "record", func(b Backend) error {
		var err error
		rec, err = b.GetStatsRecord(ctx, fileHash)
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Str("file_hash", fileHash).Msg("Error reading user stats")
		return nil
	}
	return rec
}

// Percentile returns the percentile rank (0-100) of fileHash for metric.
// ok is false when the fingerprint is unknown or the store failed.
func (s *Store) Percentile(ctx context.Context, fileHash string, metric models.Metric) (pct float64, ok bool) {
	metric = models.ParseMetric(string(metric))
	err := s.with(ctx, "percentile", func(b Backend) error {
		var err error
		pct, ok, err = b.Percentile(ctx, fileHash, metric)
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Str("file_hash", fileHash).Str("metric", string(metric)).Msg("Error computing percentile")
		return 0, false
	}
	return pct, ok
}

// Summary returns cross-user averages. ok is false if the store failed.
func (s *Store) Summary(ctx context.Context) (summary models.StatsSummary, ok bool) {
	err := s.with(ctx, "summary", func(b Backend) error {
		var err error
		summary, err = b.Summary(ctx)
		return err
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Error summarizing user stats")
		return models.StatsSummary{}, false
	}
	return summary, true
}
