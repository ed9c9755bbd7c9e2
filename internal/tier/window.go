package tier

import (
	"fmt"
	"time"
)

// SpendWindow selects which transactions count toward tier eligibility.
type SpendWindow string

const (
	WindowLifetime  SpendWindow = "lifetime"
	WindowMonthly   SpendWindow = "monthly"
	WindowQuarterly SpendWindow = "quarterly"
	WindowYearly    SpendWindow = "yearly"
)

// ParseSpendWindow validates a configured window name.
func ParseSpendWindow(s string) (SpendWindow, error) {
	switch w := SpendWindow(s); w {
	case WindowLifetime, WindowMonthly, WindowQuarterly, WindowYearly:
		return w, nil
	}
	return "", fmt.Errorf("unknown spend window %q", s)
}

// Since returns the earliest transaction time counted at asOf, or nil when
// the whole ledger counts. Windows are rolling: yearly at 2026-10-19 counts
// transactions from 2025-10-19 onward.
func (w SpendWindow) Since(asOf time.Time) *time.Time {
	var since time.Time
	switch w {
	case WindowMonthly:
		since = asOf.AddDate(0, -1, 0)
	case WindowQuarterly:
		since = asOf.AddDate(0, -3, 0)
	case WindowYearly:
		since = asOf.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &since
}
