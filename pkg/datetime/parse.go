// Package datetime provides helpers for the monthly periods of price histories.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/thermogain/thermogain/pkg/constants"
)

const (
	// PeriodLayout is the format of a monthly period, e.g. 2024-03.
	PeriodLayout = constants.PeriodLayout
)

// ParsePeriod parses a monthly period. Full dates (2024-03-15) are accepted
// and truncated to their month.
func ParsePeriod(period string) (time.Time, error) {
	p := strings.TrimSpace(period)
	if len(p) > len(PeriodLayout) {
		p = p[:len(PeriodLayout)]
	}
	t, err := time.Parse(PeriodLayout, p)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	return t, nil
}

// DaysSince returns the number of whole days elapsed between then and now.
func DaysSince(then, now time.Time) int {
	if now.Before(then) {
		return 0
	}
	return int(now.Sub(then).Hours() / 24)
}
