package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

// tokenIssuer is the iss claim of every session token.
const tokenIssuer = "guestcheckin"

type jwtClaims struct {
	jwt.RegisteredClaims
	// Address duplicates Subject.
	Address string `json:"address"`
}

// JWT issues and verifies HS256 session tokens whose subject is the
// authenticated address.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a TokenIssuer and TokenVerifier backed by secret.
func NewJWT(secret string) (*JWT, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWT{secret: []byte(secret), now: time.Now}, nil
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

// Issue signs a token for addr valid for expiry.
func (j *JWT) Issue(addr domain.Address, expiry time.Duration) (string, error) {
	now := j.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   addr.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Address: addr.Hex(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// subject address.
func (j *JWT) Verify(tokenString string) (domain.Address, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	addr, err := ethsig.ParseAddress(claims.Subject)
	if err != nil || addr.IsZero() {
		return domain.Address{}, fmt.Errorf("%w: invalid subject", domain.ErrUnauthorized)
	}
	return addr, nil
}
