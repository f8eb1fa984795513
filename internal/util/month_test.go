package util

import (
	"testing"
	"time"
)

func TestAddMonths_SameYear(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		delta     int
		wantYear  int
		wantMonth int
	}{
		{2026, 6, -1, 2026, 5},  // June -> May
		{2026, 12, -1, 2026, 11}, // Dec -> Nov
		{2026, 2, 1, 2026, 3},   // Feb -> Mar
		{2026, 4, 0, 2026, 4},
	}

	for _, tt := range tests {
		gotYear, gotMonth := AddMonths(tt.year, tt.month, tt.delta)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("AddMonths(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, tt.delta, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestAddMonths_YearBoundary(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		delta     int
		wantYear  int
		wantMonth int
	}{
		{2026, 1, -1, 2025, 12},
		{2025, 12, 1, 2026, 1},
		{2026, 3, -15, 2024, 12},
		{2026, 3, 22, 2028, 1},
		{2026, 1, -24, 2024, 1},
	}

	for _, tt := range tests {
		gotYear, gotMonth := AddMonths(tt.year, tt.month, tt.delta)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("AddMonths(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, tt.delta, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     int
		wantStart string
		wantEnd   string
	}{
		{"31 day month", 2026, 1, "2026-01-01", "2026-01-31"},
		{"30 day month", 2026, 4, "2026-04-01", "2026-04-30"},
		{"leap february", 2024, 2, "2024-02-01", "2024-02-29"},
		{"common february", 2025, 2, "2025-02-01", "2025-02-28"},
		{"december", 2025, 12, "2025-12-01", "2025-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthBounds(tt.year, tt.month)
			if got := start.Format("2006-01-02"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if start.Location() != time.UTC || end.Location() != time.UTC {
				t.Error("bounds should be in UTC")
			}
		})
	}
}
