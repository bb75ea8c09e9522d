package domain

import "time"

// Participant is one person in the source population a region's tickets
// are generated from, identified by document within an event.
type Participant struct {
	ID        string
	EventID   string
	Document  string
	FullName  string
	Region    string
	Validated bool
	CreatedAt time.Time
}
