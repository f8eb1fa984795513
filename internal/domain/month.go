package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/util"
)

// MonthLayout is the textual form of a MonthSelector.
const MonthLayout = "2006-01"

// MonthSelector identifies a calendar month. Equality is by (Year, Month) only.
type MonthSelector struct {
	Year  int
	Month time.Month
}

// NewMonthSelector validates and builds a MonthSelector.
func NewMonthSelector(year, month int) (MonthSelector, error) {
	if month < 1 || month > 12 {
		return MonthSelector{}, NewValidationError("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return MonthSelector{}, NewValidationError("year", "year must be between 1 and 9999")
	}
	return MonthSelector{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the selector containing t.
func MonthOf(t time.Time) MonthSelector {
	return MonthSelector{Year: t.Year(), Month: t.Month()}
}

// ParseMonthSelector parses the YYYY-MM form.
func ParseMonthSelector(s string) (MonthSelector, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return MonthSelector{}, NewParseError("month", s, errors.New("expected YYYY-MM"))
	}
	return MonthOf(t), nil
}

// MaxMonthDelta spans the whole supported year range; larger steps are clamped.
const MaxMonthDelta = 12 * 9999

// Step moves the selector by delta months, rolling over year boundaries.
// delta is clamped to ±MaxMonthDelta.
func (m MonthSelector) Step(delta int) MonthSelector {
	switch {
	case delta > MaxMonthDelta:
		delta = MaxMonthDelta
	case delta < -MaxMonthDelta:
		delta = -MaxMonthDelta
	}
	y, mo := util.AddMonths(m.Year, int(m.Month), delta)
	return MonthSelector{Year: y, Month: time.Month(mo)}
}

// StepChecked is Step for untrusted input: it rejects deltas beyond
// MaxMonthDelta and results outside years 1 to 9999.
func (m MonthSelector) StepChecked(delta int) (MonthSelector, error) {
	if delta > MaxMonthDelta || delta < -MaxMonthDelta {
		return MonthSelector{}, NewValidationError("delta", fmt.Sprintf("delta must be between -%d and %d", MaxMonthDelta, MaxMonthDelta))
	}
	next := m.Step(delta)
	if next.Year < 1 || next.Year > 9999 {
		return MonthSelector{}, NewValidationError("delta", "resulting month must fall between years 1 and 9999")
	}
	return next, nil
}

// Contains reports whether the calendar date d falls inside the month.
func (m MonthSelector) Contains(d time.Time) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Bounds returns the first and last day of the month.
func (m MonthSelector) Bounds() (time.Time, time.Time) {
	return util.MonthBounds(m.Year, int(m.Month))
}

// IsZero reports whether the selector was never set.
func (m MonthSelector) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthSelector) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m MonthSelector) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MonthSelector) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthSelector(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
