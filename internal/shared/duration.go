package shared

import "fmt"

// FormatDuration renders a millisecond duration as minutes:seconds ("2:05").
//
// Seconds are rounded half-up to the nearest whole second; a rounded value of 60 carries into the minutes.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}

	minutes := ms / 60000
	seconds := (ms%60000 + 500) / 1000
	if seconds == 60 {
		minutes++
		seconds = 0
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
