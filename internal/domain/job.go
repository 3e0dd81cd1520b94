package domain

import "time"

// HarvestJob is one queued unit of work: harvest a single service.
type HarvestJob struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`

	// Timeout bounds the whole run, dataset access included.
	Timeout time.Duration `json:"timeout"`

	IgnoreActive bool      `json:"ignore_active"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}
