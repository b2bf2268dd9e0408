package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"guestcheckin/internal/domain"
)

// DefaultChallengeCleanup is how often expired challenges are evicted.
const DefaultChallengeCleanup = time.Minute

// ChallengeStore is a domain.ChallengeStore backed by an expiring cache.
// Only the latest challenge per address is kept.
type ChallengeStore struct {
	cache *gocache.Cache
}

// NewChallengeStore returns an empty store whose entries expire after defaultTTL
// unless Put is given a different TTL.
func NewChallengeStore(defaultTTL, cleanupInterval time.Duration) *ChallengeStore {
	return &ChallengeStore{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func challengeKey(addr domain.Address) string {
	return addr.Hex()
}

// Put stores c for its address, replacing any outstanding challenge.
func (s *ChallengeStore) Put(ctx context.Context, c *domain.Challenge, ttl time.Duration) error {
	s.cache.Set(challengeKey(c.Address), c, ttl)
	return nil
}

// Consume removes and returns the outstanding challenge for addr.
func (s *ChallengeStore) Consume(ctx context.Context, addr domain.Address) (*domain.Challenge, bool) {
	key := challengeKey(addr)
	value, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	s.cache.Delete(key)
	c, ok := value.(*domain.Challenge)
	if !ok {
		return nil, false
	}
	return c, true
}
