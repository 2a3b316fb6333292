package sync

import "time"

// State is the coordinator's lifecycle position. Online/offline is tracked
// separately; an idle coordinator may be either.
type State string

const (
	StateIdle    State = "idle"
	StatePushing State = "pushing"
	StatePulling State = "pulling"
	StateError   State = "error"
)

// Summary is the outcome of one sync cycle.
type Summary struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Pushed      int `json:"pushed"`
	PushFailed  int `json:"push_failed"`
	Pulled      int `json:"pulled"`
	PullApplied int `json:"pull_applied"`
	PullSkipped int `json:"pull_skipped"`

	Err string `json:"error,omitempty"`
}

// Status is the coordinator's externally visible condition, served by the
// status endpoint and broadcast to websocket subscribers.
type Status struct {
	State     State     `json:"state"`
	Online    bool      `json:"online"`
	LastCycle *Summary  `json:"last_cycle,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Pending   int64     `json:"pending"`
	UpdatedAt time.Time `json:"updated_at"`
}
