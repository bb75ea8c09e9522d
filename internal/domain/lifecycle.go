package domain

// Status is the lifecycle phase of an event. It gates which operations
// are legal at any point in time.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusOpen, StatusCancelled},
	StatusOpen:      {StatusClosed, StatusCancelled},
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusDraft, StatusScheduled, StatusOpen, StatusClosed, StatusCancelled:
		return s, nil
	}
	return "", ErrInvalidStatus
}

// CanTransitionTo reports whether the lifecycle permits moving from s to
// target. Terminal states permit nothing.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// AllowsSetup reports whether quota and ticket affecting operations
// (allocation replacement, ticket generation, participant import) are
// permitted in this state.
func (s Status) AllowsSetup() bool {
	return s == StatusDraft || s == StatusScheduled
}

// AllowsDraw reports whether the draw engine may run in this state.
func (s Status) AllowsDraw() bool {
	return s == StatusOpen
}

// MakesPublic reports whether the given transition flips the event's
// public visibility flag on.
func MakesPublic(from, to Status) bool {
	if from == StatusDraft && to == StatusScheduled {
		return true
	}
	return from == StatusOpen && to == StatusClosed
}
