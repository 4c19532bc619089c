package analysis

import (
	"strings"
	"time"

	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// MonthCount is one row of the monthly activity table
type MonthCount struct {
	Month    string `json:"month"`
	Messages int    `json:"messages"`
}

// LongestConversation identifies the conversation with the most messages.
// Title is nil when there was nothing to compare.
type LongestConversation struct {
	Title    *string `json:"title"`
	Messages int     `json:"messages"`
}

// WordCount sums whitespace-delimited tokens over every text part
func WordCount(messages []chatexport.ExtractedMessage) int {
	total := 0
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tp, ok := part.(chatexport.TextPart); ok {
				total += len(strings.Fields(tp.Text))
			}
		}
	}
	return total
}

// MonthlyHistogram counts messages per calendar month in local time. All
// twelve months are present, in calendar order.
func MonthlyHistogram(messages []chatexport.ExtractedMessage) []MonthCount {
	return monthlyHistogramIn(messages, time.Local)
}

func monthlyHistogramIn(messages []chatexport.ExtractedMessage, loc *time.Location) []MonthCount {
	var counts [12]int
	for _, msg := range messages {
		t, ok := messageTimeIn(msg, loc)
		if !ok {
			continue
		}
		counts[t.Month()-1]++
	}

	table := make([]MonthCount, 12)
	for i := range counts {
		table[i] = MonthCount{
			Month:    time.Month(i + 1).String()[:3],
			Messages: counts[i],
		}
	}
	return table
}

// FindLongestConversation returns the conversation with the most nodes that
// carry a message. Conversations are compared in archive order; the first
// maximum wins.
func FindLongestConversation(conversations []chatexport.Conversation) LongestConversation {
	var longest LongestConversation

	for i := range conversations {
		conv := &conversations[i]
		count := 0
		for _, node := range conv.Mapping {
			if node.Message != nil {
				count++
			}
		}

		if longest.Title == nil || count > longest.Messages {
			title := conv.DisplayTitle()
			longest = LongestConversation{Title: &title, Messages: count}
		}
	}

	return longest
}

// CountConversations counts distinct conversation ids among messages
func CountConversations(messages []chatexport.ExtractedMessage) int {
	seen := make(map[string]struct{})
	for _, msg := range messages {
		seen[msg.ConversationID] = struct{}{}
	}
	return len(seen)
}
