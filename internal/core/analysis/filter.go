// Package analysis computes per-archive statistics over extracted messages.
package analysis

import (
	"math"
	"time"

	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// Unix seconds outside this range cannot be represented as a calendar date
// in a useful way and are treated as unconvertible.
const (
	minUnixSeconds = -62135596800 // 0001-01-01T00:00:00Z
	maxUnixSeconds = 253402300799 // 9999-12-31T23:59:59Z
)

// MessageTime converts a message timestamp to local time. The boolean is
// false when the timestamp is absent, zero, or cannot be converted.
func MessageTime(msg chatexport.ExtractedMessage) (time.Time, bool) {
	return messageTimeIn(msg, time.Local)
}

func messageTimeIn(msg chatexport.ExtractedMessage, loc *time.Location) (time.Time, bool) {
	if msg.Timestamp == nil {
		return time.Time{}, false
	}
	ts := *msg.Timestamp
	if ts == 0 || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return time.Time{}, false
	}
	if ts < minUnixSeconds || ts > maxUnixSeconds {
		return time.Time{}, false
	}

	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).In(loc), true
}

// FilterByYear keeps messages whose timestamp falls in the given calendar
// year in local time. Order is preserved.
func FilterByYear(messages []chatexport.ExtractedMessage, year int) []chatexport.ExtractedMessage {
	return FilterByYearIn(messages, year, time.Local)
}

// FilterByYearIn is FilterByYear for an explicit location
func FilterByYearIn(messages []chatexport.ExtractedMessage, year int, loc *time.Location) []chatexport.ExtractedMessage {
	filtered := make([]chatexport.ExtractedMessage, 0, len(messages))
	for _, msg := range messages {
		t, ok := messageTimeIn(msg, loc)
		if !ok {
			continue
		}
		if t.Year() == year {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// FilterByAuthor keeps messages with the given normalized author label
func FilterByAuthor(messages []chatexport.ExtractedMessage, author string) []chatexport.ExtractedMessage {
	var filtered []chatexport.ExtractedMessage
	for _, msg := range messages {
		if msg.Author == author {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
