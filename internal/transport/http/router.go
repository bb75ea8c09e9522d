package http

import "net/http"

// Services bundles everything the router needs.
type Services struct {
	Events      EventAdminService
	Prizes      PrizeAdminService
	Importer    ParticipantImporter
	Allocations AllocationPlanner
	Generator   TicketGenerator
	Lifecycle   EventTransitioner
	Draws       DrawRunner
}

// NewRouter builds the route table. Method and path matching is left to
// the mux patterns; unknown paths fall through to the JSON 404.
func NewRouter(svcs Services) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HealthHandler)

	mux.Handle("POST /events", HandleCreateEvent(svcs.Events))
	mux.Handle("GET /events", HandleListEvents(svcs.Events))
	mux.Handle("GET /events/{eventID}", HandleGetEvent(svcs.Events))
	mux.Handle("DELETE /events/{eventID}", HandleDeleteEvent(svcs.Events))
	mux.Handle("POST /events/{eventID}/transition", HandleTransitionEvent(svcs.Lifecycle))

	mux.Handle("PUT /events/{eventID}/allocations", HandleReplaceAllocations(svcs.Allocations))
	mux.Handle("GET /events/{eventID}/allocations", HandleListAllocations(svcs.Allocations))

	mux.Handle("POST /events/{eventID}/participants", HandleImportParticipants(svcs.Importer))

	mux.Handle("POST /events/{eventID}/tickets/generate", HandleGenerateTickets(svcs.Generator))
	mux.Handle("GET /events/{eventID}/tickets/progress", HandleGenerationProgress(svcs.Generator))

	mux.Handle("POST /events/{eventID}/prizes", HandleCreatePrize(svcs.Prizes))
	mux.Handle("GET /events/{eventID}/prizes", HandleListPrizes(svcs.Prizes))
	mux.Handle("POST /events/{eventID}/prizes/{prizeID}/draw", HandleDrawWinner(svcs.Draws))

	mux.Handle("GET /events/{eventID}/winners", HandleListWinners(svcs.Draws))
	mux.Handle("DELETE /events/{eventID}/winners/{winnerID}", HandleDeleteWinner(svcs.Draws))

	mux.Handle("/", NotFoundHandler())

	return mux
}
