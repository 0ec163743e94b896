// Package report formats durations, totals attendance, and renders the HTML
// report mailed to each student.
package report

import "fmt"

// AbsentLabel is shown for a session with no attended minutes.
const AbsentLabel = "Absent"

// SplitMinutes splits a minute count into whole hours and remaining minutes.
// Hours are not rolled over into days.
func SplitMinutes(total int) (hours, minutes int) {
	return total / 60, total % 60
}

// FormatDuration renders a session duration, "Absent" for zero.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return AbsentLabel
	}
	return formatHours(minutes)
}

// FormatTotal renders an aggregate duration. Unlike FormatDuration it
// never yields "Absent": zero renders as "0h 0m".
func FormatTotal(minutes int) string {
	return formatHours(minutes)
}

func formatHours(minutes int) string {
	h, m := SplitMinutes(minutes)
	return fmt.Sprintf("%dh %dm", h, m)
}
