package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a keyed document does not exist.
var ErrNotFound = errors.New("not found")

// Status is the only externally visible outcome of a harvest run.
type Status string

const (
	StatusHarvested    Status = "Harvested"
	StatusNotHarvested Status = "Not harvested"
)

// Harvest tracks the last run for one service. Created on the first run,
// mutated in place afterwards.
type Harvest struct {
	ServiceID string `json:"service_id"`

	// RunID identifies the latest run in logs and job payloads.
	RunID string `json:"run_id"`

	Status  Status `json:"harvest_status"`
	Message string `json:"message,omitempty"`

	StartedAt  time.Time `json:"started"`
	FinishedAt time.Time `json:"finished"`

	// Runs counts completed runs, successful or not.
	Runs int64 `json:"runs"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func NewHarvest(serviceID string, now time.Time) *Harvest {
	return &Harvest{
		ServiceID: serviceID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Begin marks the start of a new run.
func (h *Harvest) Begin(runID string, now time.Time) {
	h.RunID = runID
	h.StartedAt = now
	h.UpdatedAt = now
}

// Finish records the outcome of the current run.
func (h *Harvest) Finish(status Status, message string, now time.Time) {
	h.Status = status
	h.Message = message
	h.FinishedAt = now
	h.UpdatedAt = now
	h.Runs++
}
