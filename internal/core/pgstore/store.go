// Package pgstore keeps per-user archive totals in PostgreSQL. It mirrors the
// SQLite backend for deployments where several servers share one store.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neilberkman/gptwrapped/internal/core/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS stats (
	id BIGSERIAL PRIMARY KEY,
	file_hash TEXT UNIQUE NOT NULL,
	total_words BIGINT,
	total_conversations BIGINT,
	total_messages BIGINT,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);
ALTER TABLE stats
	ALTER COLUMN total_words TYPE BIGINT,
	ALTER COLUMN total_conversations TYPE BIGINT,
	ALTER COLUMN total_messages TYPE BIGINT;
CREATE INDEX IF NOT EXISTS idx_stats_total_words ON stats(total_words);
CREATE INDEX IF NOT EXISTS idx_stats_total_conversations ON stats(total_conversations);
CREATE INDEX IF NOT EXISTS idx_stats_total_messages ON stats(total_messages);
`

type Store struct {
	conn *pgx.Conn
}

// New connects to databaseURL and ensures the stats table exists
func New(ctx context.Context, databaseURL string) (*Store, error) {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := conn.Exec(ctx, schema); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close(context.Background())
}

func (s *Store) UpsertStats(ctx context.Context, rec models.StatsRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO stats (file_hash, total_words, total_conversations, total_messages)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_hash) DO UPDATE SET
			total_words = EXCLUDED.total_words,
			total_conversations = EXCLUDED.total_conversations,
			total_messages = EXCLUDED.total_messages,
			updated_at = NOW()
	`, rec.FileHash, rec.TotalWords, rec.TotalConversations, rec.TotalMessages)
	if err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

func (s *Store) GetStatsRecord(ctx context.Context, fileHash string) (*models.StatsRecord, error) {
	var r models.StatsRecord
	var words, convos, msgs *int64

	err := s.conn.QueryRow(ctx, `
		SELECT id, file_hash, total_words, total_conversations, total_messages, created_at, updated_at
		FROM stats WHERE file_hash = $1
	`, fileHash).Scan(&r.ID, &r.FileHash, &words, &convos, &msgs, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get stats record: %w", err)
	}

	r.TotalWords = derefInt(words)
	r.TotalConversations = derefInt(convos)
	r.TotalMessages = derefInt(msgs)
	return &r, nil
}

func (s *Store) Percentile(ctx context.Context, fileHash string, metric models.Metric) (float64, bool, error) {
	column := pgx.Identifier{string(models.ParseMetric(string(metric)))}.Sanitize()

	// A single statement sees one snapshot
	var atOrBelow, total int64
	var found bool
	err := s.conn.QueryRow(ctx, fmt.Sprintf(`
		WITH me AS (SELECT %[1]s AS v FROM stats WHERE file_hash = $1)
		SELECT
			EXISTS (SELECT 1 FROM me),
			(SELECT COUNT(*) FROM stats, me WHERE stats.%[1]s <= me.v),
			(SELECT COUNT(*) FROM stats)
	`, column), fileHash).Scan(&found, &atOrBelow, &total)
	if err != nil {
		return 0, false, fmt.Errorf("percentile: %w", err)
	}
	if !found || total == 0 {
		return 0, false, nil
	}
	return float64(atOrBelow) / float64(total) * 100, true, nil
}

func (s *Store) Summary(ctx context.Context) (models.StatsSummary, error) {
	var summary models.StatsSummary
	var total int64

	err := s.conn.QueryRow(ctx, `
		SELECT
			AVG(total_words)::float8,
			AVG(total_conversations)::float8,
			AVG(total_messages)::float8,
			COUNT(*)
		FROM stats
	`).Scan(&summary.AvgWords, &summary.AvgConversations, &summary.AvgMessages, &total)
	if err != nil {
		return summary, fmt.Errorf("summarize stats: %w", err)
	}
	summary.TotalUsers = int(total)
	return summary, nil
}

func derefInt(v *int64) int {
	if v == nil {
		return 0
	}
	return int(*v)
}
