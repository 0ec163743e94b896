package models

// SessionDuration is one rendered row of the session table.
type SessionDuration struct {
	Label string
	// Minutes is the attended duration; zero means absent.
	Minutes int
	// Display is the formatted duration ("1h 30m" or "Absent").
	Display string
}

// Absent reports whether the session should be highlighted.
func (s SessionDuration) Absent() bool {
	return s.Minutes == 0
}

// Report is a rendered attendance report for one student.
type Report struct {
	// Row is the source row the report was built from.
	Row      int
	Identity Identity
	Sessions []SessionDuration
	// TotalMinutes is the sum over all sessions.
	TotalMinutes int
	// Total is the formatted total; never "Absent".
	Total   string
	Subject string
	HTML    string
}
