package models

import (
	"errors"
	"time"
)

// Metric names a comparable per-user total. The values are column names.
type Metric string

const (
	MetricWords         Metric = "total_words"
	MetricConversations Metric = "total_conversations"
	MetricMessages      Metric = "total_messages"
)

// Metrics lists every comparable metric
var Metrics = []Metric{MetricWords, MetricConversations, MetricMessages}

// ParseMetric returns the metric with the given name. Unknown names fall back
// to MetricWords.
func ParseMetric(name string) Metric {
	switch m := Metric(name); m {
	case MetricWords, MetricConversations, MetricMessages:
		return m
	default:
		return MetricWords
	}
}

// StatsRecord is the persisted, anonymized summary of one uploaded archive
type StatsRecord struct {
	ID                 int64
	FileHash           string // Archive fingerprint
	TotalWords         int
	TotalConversations int
	TotalMessages      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Value returns the record's value for a metric
func (r *StatsRecord) Value(m Metric) int {
	switch m {
	case MetricConversations:
		return r.TotalConversations
	case MetricMessages:
		return r.TotalMessages
	default:
		return r.TotalWords
	}
}

// Validate checks if the record can be stored
func (r *StatsRecord) Validate() error {
	if r.FileHash == "" {
		return errors.New("file_hash is required")
	}
	if r.TotalWords < 0 || r.TotalConversations < 0 || r.TotalMessages < 0 {
		return errors.New("totals must be non-negative")
	}
	return nil
}

// StatsSummary holds cross-user averages. Averages are nil when no user has
// been recorded yet.
type StatsSummary struct {
	AvgWords         *float64 `json:"avg_words"`
	AvgConversations *float64 `json:"avg_conversations"`
	AvgMessages      *float64 `json:"avg_messages"`
	TotalUsers       int      `json:"total_users"`
}
