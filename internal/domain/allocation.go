package domain

// Allocation assigns one region a contiguous ticket-number range and a
// target quota inside an event. Ranges of the same event never overlap
// and each range is exactly quota wide.
type Allocation struct {
	ID        string
	EventID   string
	Region    string
	RangeFrom int
	RangeTo   int
	Quota     int
	Percent   float64
}

// Width is the number of ticket numbers covered by the range.
func (a Allocation) Width() int {
	return a.RangeTo - a.RangeFrom + 1
}

// Contains reports whether n falls inside the allocation's range.
func (a Allocation) Contains(n int) bool {
	return n >= a.RangeFrom && n <= a.RangeTo
}

// Overlaps reports whether two ranges share at least one number.
func (a Allocation) Overlaps(b Allocation) bool {
	return a.RangeFrom <= b.RangeTo && b.RangeFrom <= a.RangeTo
}
