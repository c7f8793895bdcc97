package money

import (
	"fmt"
	"time"

	"github.com/Strob0t/LeaseForge/internal/domain"
)

// Period identifies a billing month. Its canonical key is the first-of-month
// date in "YYYY-MM-01" form, which is the natural key for rent obligations.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod accepts "YYYY-MM-01" (any day is normalized) or "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return PeriodOf(t), nil
		}
	}
	return Period{}, fmt.Errorf("parse period %q: want YYYY-MM-01: %w", s, domain.ErrValidation)
}

// Key returns the canonical "YYYY-MM-01" period key.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d-01", p.Year, p.Month)
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following period.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// DueDate returns the due date for this period given a due-day offset.
// Day 1 means rent is due on the first of the month.
func (p Period) DueDate(dueDay int) time.Time {
	if dueDay < 1 {
		dueDay = 1
	}
	start := p.Start()
	due := start.AddDate(0, 0, dueDay-1)
	// Clamp into the period for due days past the month's end.
	if next := p.Next().Start(); !due.Before(next) {
		due = next.AddDate(0, 0, -1)
	}
	return due
}

// Before reports whether p precedes other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// IsZero reports whether p is the zero period.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// PeriodsBetween returns every period from first to last inclusive.
func PeriodsBetween(first, last Period) []Period {
	var out []Period
	for p := first; !last.Before(p); p = p.Next() {
		out = append(out, p)
	}
	return out
}
