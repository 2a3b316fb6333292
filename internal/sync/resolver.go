package sync

import "time"

// Winner names the side a conflict resolved to.
type Winner int

const (
	RemoteWins Winner = iota
	LocalWins
)

func (w Winner) String() string {
	if w == LocalWins {
		return "local"
	}
	return "remote"
}

// Version is the part of a record that conflict resolution looks at. A
// zero Version stands for "no local copy" and loses to any remote.
type Version struct {
	UpdatedAt time.Time
	Deleted   bool
}

// Resolve picks a winner by last write. Only a strictly newer local copy
// survives; on equal timestamps the remote wins, so every terminal facing
// the same pair converges to the same row. Deletions carry no special
// weight, a tombstone is just a version like any other.
func Resolve(local, remote Version) Winner {
	if local.UpdatedAt.After(remote.UpdatedAt) {
		return LocalWins
	}
	return RemoteWins
}
