package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/neilberkman/gptwrapped/internal/core/models"
)

// UpsertStats records totals for an archive fingerprint. An existing row is
// overwritten in place and its updated_at bumped; created_at is kept.
func (db *DB) UpsertStats(ctx context.Context, rec models.StatsRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO stats (file_hash, total_words, total_conversations, total_messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(file_hash) DO UPDATE SET
			total_words = excluded.total_words,
			total_conversations = excluded.total_conversations,
			total_messages = excluded.total_messages,
			updated_at = CURRENT_TIMESTAMP
	`, rec.FileHash, rec.TotalWords, rec.TotalConversations, rec.TotalMessages)
	if err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

// GetStatsRecord returns the record for a fingerprint, or nil if none exists
func (db *DB) GetStatsRecord(ctx context.Context, fileHash string) (*models.StatsRecord, error) {
	var r models.StatsRecord
	var words, convos, msgs sql.NullInt64
	var createdAt, updatedAt sql.NullString

	err := db.conn.QueryRowContext(ctx, `
		SELECT id, file_hash, total_words, total_conversations, total_messages, created_at, updated_at
		FROM stats WHERE file_hash = ?
	`, fileHash).Scan(&r.ID, &r.FileHash, &words, &convos, &msgs, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.TotalWords = int(words.Int64)
	r.TotalConversations = int(convos.Int64)
	r.TotalMessages = int(msgs.Int64)
	if createdAt.Valid {
		r.CreatedAt = parseTimestamp(createdAt.String)
	}
	if updatedAt.Valid {
		r.UpdatedAt = parseTimestamp(updatedAt.String)
	}

	return &r, nil
}

// Percentile returns the share (0-100) of records whose metric is less than
// or equal to this fingerprint's value. ok is false when the fingerprint has
// no record.
func (db *DB) Percentile(ctx context.Context, fileHash string, metric models.Metric) (pct float64, ok bool, err error) {
	// Column names cannot be bound; ParseMetric restricts to known columns
	column := string(models.ParseMetric(string(metric)))

	tx, err := db.beginRead(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var value sql.NullInt64
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM stats WHERE file_hash = ?`, column), fileHash).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", column, err)
	}

	var atOrBelow int
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM stats WHERE %s <= ?`, column), value.Int64).Scan(&atOrBelow)
	if err != nil {
		return 0, false, fmt.Errorf("count at or below: %w", err)
	}

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM stats`).Scan(&total); err != nil {
		return 0, false, fmt.Errorf("count stats: %w", err)
	}
	if total == 0 {
		return 0, false, nil
	}

	return float64(atOrBelow) / float64(total) * 100, true, nil
}

// Summary returns cross-user averages over every record
func (db *DB) Summary(ctx context.Context) (models.StatsSummary, error) {
	var summary models.StatsSummary
	var avgWords, avgConvos, avgMessages sql.NullFloat64

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			AVG(total_words),
			AVG(total_conversations),
			AVG(total_messages),
			COUNT(*)
		FROM stats
	`).Scan(&avgWords, &avgConvos, &avgMessages, &summary.TotalUsers)
	if err != nil {
		return summary, fmt.Errorf("summarize stats: %w", err)
	}

	summary.AvgWords = nullFloat(avgWords)
	summary.AvgConversations = nullFloat(avgConvos)
	summary.AvgMessages = nullFloat(avgMessages)

	return summary, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// parseTimestamp attempts to parse timestamps from the formats SQLite and the driver produce
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999 -0700 MST", // Go default format
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
