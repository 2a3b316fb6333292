package model

import "time"

// Checkpoint names for the persisted sync metadata. Each is advanced only
// after the corresponding cycle's success criteria are met.
const (
	CheckpointLastPoll      = "last_poll"
	CheckpointLastReconcile = "last_reconcile"
	CheckpointLastCloudPull = "last_cloud_pull"
)

// SyncCheckpoint is durable sync metadata: the high-water timestamps the
// poller, reconciler and cloud pull resume from across restarts.
type SyncCheckpoint struct {
	Name      string    `gorm:"type:varchar(40);primaryKey" json:"name"`
	Value     time.Time `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
