package model

import "time"

// RunState tracks the scheduler's forecast history across restarts.
type RunState struct {
	LastRunID           string    `json:"last_run_id"`
	LastSymbol          string    `json:"last_symbol"`
	LastReport          string    `json:"last_report"`
	LastRunAt           time.Time `json:"last_run_at"`
	LastError           string    `json:"last_error,omitempty"`
	Runs                int       `json:"runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	UpdatedAt           time.Time `json:"updated_at"`
}
