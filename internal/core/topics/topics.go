// Package topics groups conversation titles into labeled topics.
package topics

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"

	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// MinTitles is the fewest distinct titles topic extraction will work with
const MinTitles = 10

// ErrNotEnoughTitles is returned when there are fewer than MinTitles titles
var ErrNotEnoughTitles = errors.New("not enough conversations to extract topics")

// Topic is one cluster of conversation titles
type Topic struct {
	Label      string  `json:"topic"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Extractor turns titles into at most topN topics, most frequent first
type Extractor interface {
	ExtractTopics(ctx context.Context, titles []string, topN int) ([]Topic, error)
}

// CollectTitles returns the distinct titles of the conversations in messages,
// skipping titles that are empty, the export default, or too short to say
// anything. Titles differing only in case count once.
func CollectTitles(messages []chatexport.ExtractedMessage) []string {
	seenConv := make(map[string]bool)
	seenTitle := make(map[string]bool)
	var titles []string

	for _, msg := range messages {
		if seenConv[msg.ConversationID] {
			continue
		}
		seenConv[msg.ConversationID] = true

		title := strings.TrimSpace(msg.ConversationTitle)
		if title == "" || title == chatexport.DefaultTitle || utf8.RuneCountInString(title) <= 5 {
			continue
		}

		key := strings.ToLower(title)
		if seenTitle[key] {
			continue
		}
		seenTitle[key] = true
		titles = append(titles, title)
	}

	return titles
}

// distinctCount counts titles ignoring case
func distinctCount(titles []string) int {
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		seen[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return len(seen)
}

// KeywordExtractor clusters titles by their most widespread content word.
// Each title joins the cluster of its keyword with the highest document
// frequency; clusters are labeled with their most frequent words.
type KeywordExtractor struct {
	tagger    *prose.Model
	stopwords map[string]struct{}
	minSize   int
}

// NewKeywordExtractor loads the part-of-speech model and builds the stopword
// table. Both are expensive; call once at startup.
func NewKeywordExtractor() *KeywordExtractor {
	sw := make(map[string]struct{}, len(stopwordList))
	for _, w := range stopwordList {
		sw[w] = struct{}{}
	}
	return &KeywordExtractor{
		tagger:    prose.ModelFromData("gptwrapped-titles"),
		stopwords: sw,
		minSize:   2,
	}
}

// Keywords returns the content words of a title: nouns and adjectives that
// are alphabetic, longer than two letters and not a stopword, lowercased.
func (e *KeywordExtractor) Keywords(title string) []string {
	doc, err := prose.NewDocument(title,
		prose.UsingModel(e.tagger),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil
	}

	var words []string
	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "NN") && !strings.HasPrefix(tok.Tag, "JJ") {
			continue
		}
		w := strings.ToLower(tok.Text)
		if utf8.RuneCountInString(w) <= 2 || !isAlpha(w) {
			continue
		}
		if _, stop := e.stopwords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ExtractTopics implements Extractor
func (e *KeywordExtractor) ExtractTopics(ctx context.Context, titles []string, topN int) ([]Topic, error) {
	if distinctCount(titles) < MinTitles {
		return nil, ErrNotEnoughTitles
	}
	if topN <= 0 {
		return nil, nil
	}

	docs := make([][]string, len(titles))
	df := make(map[string]int)
	for i, title := range titles {
		docs[i] = e.Keywords(title)
		for w := range set(docs[i]) {
			df[w]++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Assign each title to its most widespread keyword
	clusters := make(map[string][]int)
	for i, words := range docs {
		best := ""
		for _, w := range words {
			if best == "" || df[w] > df[best] || (df[w] == df[best] && w < best) {
				best = w
			}
		}
		if best == "" {
			continue // no content words; treated as an outlier
		}
		clusters[best] = append(clusters[best], i)
	}

	var topics []Topic
	for _, members := range clusters {
		if len(members) < e.minSize {
			continue
		}
		topics = append(topics, Topic{
			Label:      e.label(docs, members),
			Count:      len(members),
			Percentage: float64(len(members)) / float64(len(titles)) * 100,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Label < topics[j].Label
	})

	if len(topics) > topN {
		topics = topics[:topN]
	}
	return topics, nil
}

// label names a cluster by its (up to) three most frequent words
func (e *KeywordExtractor) label(docs [][]string, members []int) string {
	freq := make(map[string]int)
	for _, i := range members {
		for _, w := range docs[i] {
			freq[w]++
		}
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, ", ")
}

func set(words []string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
