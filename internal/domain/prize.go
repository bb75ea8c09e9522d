package domain

// PrizeScope determines the candidate pool a prize is drawn from.
type PrizeScope string

const (
	// PrizeScopeNational draws from every eligible ticket of the event.
	PrizeScopeNational PrizeScope = "national"
	// PrizeScopeRegional draws only from tickets of the prize's region.
	PrizeScopeRegional PrizeScope = "regional"
)

// Prize is the unit of selection for a draw. Position orders draws;
// Region is set only for regional scope.
type Prize struct {
	ID       string
	EventID  string
	Name     string
	Position int
	Scope    PrizeScope
	Region   string
}
