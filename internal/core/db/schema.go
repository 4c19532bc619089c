package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per uploaded archive, keyed by its fingerprint
	CREATE TABLE IF NOT EXISTS stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_hash TEXT UNIQUE NOT NULL,
		total_words INTEGER,
		total_conversations INTEGER,
		total_messages INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- Percentile queries count rows at or below a value
	CREATE INDEX IF NOT EXISTS idx_stats_total_words ON stats(total_words);
	CREATE INDEX IF NOT EXISTS idx_stats_total_conversations ON stats(total_conversations);
	CREATE INDEX IF NOT EXISTS idx_stats_total_messages ON stats(total_messages);
	`

	_, err := db.conn.Exec(schema)
	return err
}
