package tui

import "time"

func daysInMonth(y int, m time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(y int, m time.Month, d int) int {
	if d < 1 {
		return 1
	}
	if n := daysInMonth(y, m); d > n {
		return n
	}
	return d
}
