package redis

import (
	"context"
	"fmt"
	"time"

	"snap-partner-gateway/internal/domain/ports/repository"
)

var _ repository.ReplayStore = (*ReplayStore)(nil)

// ReplayStore detects replayed webhook deliveries with a SetNX-guarded
// first-seen marker per partner external id. The TTL bounds memory: the
// partner's retry window is far shorter than the retention we keep.
type ReplayStore struct {
	cli RedisClient
}

func NewReplayStore(cli RedisClient) *ReplayStore {
	return &ReplayStore{cli: cli}
}

func (s *ReplayStore) FirstSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.cli.SetNX(ctx, replayKey(id), 1, ttl)
	if err != nil {
		return false, fmt.Errorf("replay marker: %w", err)
	}
	return ok, nil
}

func replayKey(id string) string {
	return "webhook:seen:" + id
}
