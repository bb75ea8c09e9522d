package domain

import "time"

// Event represents one raffle ("sorteo") with its own lifecycle,
// allocations, tickets, prizes and winners.
type Event struct {
	ID          string
	Name        string
	ScheduledAt time.Time
	Status      Status
	Public      bool
	Metadata    EventMetadata
	CreatedAt   time.Time
}

// EventMetadata is the free-form JSON document stored on the event row.
// It carries the generation progress snapshot while a run is in flight
// and the aggregate counters once a run completes.
type EventMetadata struct {
	Generation *GenerationProgress `json:"generation,omitempty"`
	Totals     *GenerationTotals   `json:"totals,omitempty"`
}

// GenerationProgress is updated after every committed batch of a ticket
// generation run. It is the only cross-process visibility into an
// in-flight run and is consumed by polling.
type GenerationProgress struct {
	TotalTarget   int       `json:"total_target"`
	Generated     int       `json:"generated"`
	Percentage    float64   `json:"percentage"`
	CurrentRegion string    `json:"current_region"`
	RegionsDone   int       `json:"regions_done"`
	RegionsTotal  int       `json:"regions_total"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GenerationTotals records the outcome of a completed generation run.
type GenerationTotals struct {
	Total       int            `json:"total"`
	PerRegion   map[string]int `json:"per_region"`
	CompletedAt time.Time      `json:"completed_at"`
}
