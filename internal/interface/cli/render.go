package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/gptwrapped/internal/core/analysis"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginTop(1)

	emphasisStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("120"))

	labelStyle = lipgloss.NewStyle().
			Width(18).
			Foreground(lipgloss.Color("246"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")) // Lighter gray for dark terminals
)

const barWidth = 30

func renderResult(res *wrapped.Result, name string, noSave bool) string {
	report := res.Report
	var b strings.Builder

	b.WriteString(titleStyle.Render(reportTitle(report.Year, name)))
	b.WriteString("\n\n")
	b.WriteString(renderEmphasis(res.Headline))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Totals"))
	b.WriteString("\n")
	row(&b, "Conversations", humanize.Comma(int64(report.TotalConversations)))
	row(&b, "Messages", humanize.Comma(int64(report.TotalMessages)))
	row(&b, "Your messages", humanize.Comma(int64(report.UserMessages)))
	row(&b, "Your words", humanize.Comma(int64(report.UserWords)))
	row(&b, "Books", fmt.Sprintf("%.2f", report.Books))

	b.WriteString(sectionStyle.Render("By month"))
	b.WriteString("\n")
	b.WriteString(monthlyBars(report.Monthly))

	b.WriteString(sectionStyle.Render("Longest conversation"))
	b.WriteString("\n")
	if report.Longest.Title != nil {
		fmt.Fprintf(&b, "%s (%s messages)\n", *report.Longest.Title, humanize.Comma(int64(report.Longest.Messages)))
	} else {
		b.WriteString(hintStyle.Render("No conversations"))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Topics"))
	b.WriteString("\n")
	if len(res.Topics) == 0 {
		b.WriteString(hintStyle.Render(res.TopicsMessage))
		b.WriteString("\n")
	}
	for _, t := range res.Topics {
		fmt.Fprintf(&b, "%-40s %4d  %5.1f%%\n", t.Label, t.Count, t.Percentage)
	}

	b.WriteString(sectionStyle.Render("Compared with other users"))
	b.WriteString("\n")
	b.WriteString(renderComparison(res.Comparison, noSave))

	return b.String()
}

func reportTitle(year int, name string) string {
	if name != "" {
		return fmt.Sprintf("%s's %d ChatGPT Wrapped", name, year)
	}
	return fmt.Sprintf("Your %d ChatGPT Wrapped", year)
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

// renderEmphasis turns **text** into bold text
func renderEmphasis(s string) string {
	parts := strings.Split(s, "**")
	if len(parts)%2 == 0 {
		// Unbalanced markers, leave the text alone
		return s
	}
	for i := 1; i < len(parts); i += 2 {
		parts[i] = emphasisStyle.Render(parts[i])
	}
	return strings.Join(parts, "")
}

// monthlyBars draws one bar per month scaled to the busiest month
func monthlyBars(months []analysis.MonthCount) string {
	peak := 0
	for _, m := range months {
		if m.Messages > peak {
			peak = m.Messages
		}
	}

	var b strings.Builder
	for _, m := range months {
		width := 0
		if peak > 0 {
			width = m.Messages * barWidth / peak
		}
		if width == 0 && m.Messages > 0 {
			width = 1
		}
		fmt.Fprintf(&b, "%s %s %s\n", m.Month, barStyle.Render(strings.Repeat("█", width)), humanize.Comma(int64(m.Messages)))
	}
	return b.String()
}

func renderComparison(cmp *wrapped.Comparison, noSave bool) string {
	if cmp == nil || !cmp.Available() {
		if noSave {
			return hintStyle.Render("Skipped (--no-save)") + "\n"
		}
		return hintStyle.Render("Comparison unavailable") + "\n"
	}

	var b strings.Builder
	row(&b, "Words", topLabel(cmp.WordsPercentile))
	row(&b, "Conversations", topLabel(cmp.ConversationsPercentile))
	row(&b, "Messages", topLabel(cmp.MessagesPercentile))

	s := cmp.Summary
	if s.AvgWords != nil && s.AvgConversations != nil && s.AvgMessages != nil {
		fmt.Fprintf(&b, "%s\n", hintStyle.Render(fmt.Sprintf(
			"Average across %s users: %s words, %s conversations, %s messages",
			humanize.Comma(int64(s.TotalUsers)),
			humanize.Comma(int64(math.Round(*s.AvgWords))),
			humanize.Comma(int64(math.Round(*s.AvgConversations))),
			humanize.Comma(int64(math.Round(*s.AvgMessages))),
		)))
	}

	if cmp.PowerUser() {
		b.WriteString(emphasisStyle.Render("Power user! You're in the top 10% by words."))
		b.WriteString("\n")
	}
	return b.String()
}

func topLabel(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("top %.0f%%", wrapped.Top(*pct))
}

// plainSummary is the unstyled text placed on the clipboard
func plainSummary(res *wrapped.Result, name string) string {
	report := res.Report
	var b strings.Builder

	b.WriteString(reportTitle(report.Year, name))
	b.WriteString("\n")
	b.WriteString(strings.ReplaceAll(res.Headline, "**", ""))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s conversations, %s messages, %s words\n",
		humanize.Comma(int64(report.TotalConversations)),
		humanize.Comma(int64(report.TotalMessages)),
		humanize.Comma(int64(report.UserWords)))

	if len(res.Topics) > 0 {
		labels := make([]string, 0, len(res.Topics))
		for _, t := range res.Topics {
			labels = append(labels, t.Label)
		}
		fmt.Fprintf(&b, "Top topics: %s\n", strings.Join(labels, "; "))
	}

	if res.Comparison != nil && res.Comparison.WordsPercentile != nil {
		fmt.Fprintf(&b, "Top %.0f%% of users by words\n", wrapped.Top(*res.Comparison.WordsPercentile))
	}

	return b.String()
}
