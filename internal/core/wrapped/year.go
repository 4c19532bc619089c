package wrapped

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var yearParser = newYearParser()

func newYearParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseYear accepts a four digit year or a natural language date such as
// "yesterday" or "2 years ago", resolved against now. Empty means now's year.
func ParseYear(s string, now time.Time) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Year(), nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 9999 {
			return 0, fmt.Errorf("year %d out of range", n)
		}
		return n, nil
	}

	result, err := yearParser.Parse(s, now)
	if err != nil {
		return 0, fmt.Errorf("failed to parse year %q: %w", s, err)
	}
	if result == nil {
		return 0, fmt.Errorf("failed to parse year %q", s)
	}
	return result.Time.Year(), nil
}
