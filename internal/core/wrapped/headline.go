package wrapped

import (
	"fmt"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"
)

// RenderHeadline renders the report headline template. Available variables:
// words, books, year, conversations, messages, name.
func RenderHeadline(tmpl string, report *Report, name string) (string, error) {
	data := map[string]interface{}{
		"words":         humanize.Comma(int64(report.UserWords)),
		"books":         fmt.Sprintf("%.2f", report.Books),
		"year":          report.Year,
		"conversations": humanize.Comma(int64(report.TotalConversations)),
		"messages":      humanize.Comma(int64(report.TotalMessages)),
		"name":          name,
	}

	headline, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render headline: %w", err)
	}
	return headline, nil
}
