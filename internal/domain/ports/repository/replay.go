package repository

import (
	"context"
	"time"
)

// ReplayStore remembers webhook external ids so a replayed delivery is
// detected and dropped instead of routed twice.
type ReplayStore interface {
	// FirstSeen records id and reports true when this is the first
	// delivery within the retention window.
	FirstSeen(ctx context.Context, id string, ttl time.Duration) (bool, error)
}
