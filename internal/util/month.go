package util

import "time"

// AddMonths moves (year, month) by delta months in either direction, rolling over years.
func AddMonths(year, month, delta int) (int, int) {
	index := year*12 + (month - 1) + delta
	y := index / 12
	m := index % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, m + 1
}

// MonthBounds returns the first and last calendar day of the given month in UTC
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one
	end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}
