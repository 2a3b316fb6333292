package sync

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrOffline is returned by TriggerSync when the monitor says the
	// network is down; nothing was attempted.
	ErrOffline = errors.New("sync: offline")

	// ErrBusy is returned by TriggerSync while a cycle is in flight.
	ErrBusy = errors.New("sync: cycle already running")

	// ErrNotReady is returned before Start has run.
	ErrNotReady = errors.New("sync: coordinator not started")
)

// IsTransient reports whether err looks like a connectivity failure worth
// retrying on a later cycle, as opposed to a record-level problem.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
