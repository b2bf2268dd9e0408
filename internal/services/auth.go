package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

// challengeMessageFormat is the text a wallet signs to prove control of an
// address. It is hashed with the personal-message prefix.
const challengeMessageFormat = "Sign in to guest check-in\nAddress: %s\nNonce: %s"

type authService struct {
	challenges   domain.ChallengeStore
	issuer       domain.TokenIssuer
	clock        domain.Clock
	challengeTTL time.Duration
	tokenExpiry  time.Duration
}

// NewAuthService creates an AuthService that issues signature challenges and
// session tokens.
func NewAuthService(challenges domain.ChallengeStore, issuer domain.TokenIssuer, clock domain.Clock, challengeTTL, tokenExpiry time.Duration) domain.AuthService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &authService{
		challenges:   challenges,
		issuer:       issuer,
		clock:        clock,
		challengeTTL: challengeTTL,
		tokenExpiry:  tokenExpiry,
	}
}

// ChallengeMessage returns the text to sign for nonce.
func ChallengeMessage(addr domain.Address, nonce string) string {
	return fmt.Sprintf(challengeMessageFormat, addr.Hex(), nonce)
}

func (s *authService) RequestChallenge(ctx context.Context, addr domain.Address) (*domain.Challenge, error) {
	if addr.IsZero() {
		return nil, fmt.Errorf("%w: zero address", domain.ErrInvalidInput)
	}
	nonce := uuid.NewString()
	c := &domain.Challenge{
		Address:   addr,
		Nonce:     nonce,
		Message:   ChallengeMessage(addr, nonce),
		ExpiresAt: s.clock.Now().Add(s.challengeTTL),
	}
	if err := s.challenges.Put(ctx, c, s.challengeTTL); err != nil {
		return nil, fmt.Errorf("store challenge: %w", err)
	}
	return c, nil
}

func (s *authService) Login(ctx context.Context, addr domain.Address, signature []byte) (string, error) {
	c, ok := s.challenges.Consume(ctx, addr)
	if !ok {
		return "", fmt.Errorf("%w: no outstanding challenge", domain.ErrUnauthorized)
	}
	if s.clock.Now().After(c.ExpiresAt) {
		return "", fmt.Errorf("%w: challenge expired", domain.ErrUnauthorized)
	}
	signer, err := ethsig.RecoverSigner(ethsig.TextHash([]byte(c.Message)), signature)
	if err != nil {
		if errors.Is(err, ethsig.ErrInvalidSignatureLength) || errors.Is(err, ethsig.ErrInvalidSignatureV) {
			return "", err
		}
		return "", fmt.Errorf("recover signer: %w", err)
	}
	if signer.IsZero() || signer != addr {
		return "", fmt.Errorf("%w: signature does not match address", domain.ErrUnauthorized)
	}
	token, err := s.issuer.Issue(addr, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
