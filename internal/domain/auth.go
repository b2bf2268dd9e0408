package domain

import (
	"context"
	"time"
)

// Challenge is a one-time sign-in message issued to an address.
// swagger:model Challenge
type Challenge struct {
	Address   Address   `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChallengeStore keeps outstanding challenges until they are consumed or expire.
type ChallengeStore interface {
	Put(ctx context.Context, c *Challenge, ttl time.Duration) error
	// Consume returns and removes the outstanding challenge for addr.
	Consume(ctx context.Context, addr Address) (*Challenge, bool)
}

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated address.
type TokenIssuer interface {
	Issue(addr Address, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated address.
type TokenVerifier interface {
	Verify(token string) (Address, error)
}

// AuthService proves control of an address by signature and issues sessions.
type AuthService interface {
	RequestChallenge(ctx context.Context, addr Address) (*Challenge, error)
	Login(ctx context.Context, addr Address, signature []byte) (token string, err error)
}
