package ethsig

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureLength is the size of an r ‖ s ‖ v signature.
const SignatureLength = 65

// Signature structural errors.
var (
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrInvalidSignatureV      = errors.New("invalid signature v value")
	ErrInvalidPrivateKey      = errors.New("invalid private key")
)

// PrivateKey is a secp256k1 signing key.
type PrivateKey = secp256k1.PrivateKey

// Signature is a parsed 65-byte recoverable ECDSA signature.
// V is always normalized to 27 or 28.
type Signature struct {
	R [32]byte
	S [32]byte
	V byte
}

// ParseSignature splits b into r, s and v. The length is validated before any
// field is read; v values 0 and 1 are lifted to 27 and 28.
func ParseSignature(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLength {
		return sig, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSignatureLength, len(b), SignatureLength)
	}
	copy(sig.R[:], b[0:32])
	copy(sig.S[:], b[32:64])
	v := b[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return sig, fmt.Errorf("%w: %d", ErrInvalidSignatureV, v)
	}
	sig.V = v
	return sig, nil
}

// Bytes encodes the signature as r ‖ s ‖ v.
func (s Signature) Bytes() []byte {
	out := make([]byte, 0, SignatureLength)
	out = append(out, s.R[:]...)
	out = append(out, s.S[:]...)
	return append(out, s.V)
}

// RecoverSigner returns the address whose key produced sig over digest.
// Malformed signatures fail with ErrInvalidSignatureLength or
// ErrInvalidSignatureV. A well-formed signature that does not correspond to
// any curve point recovers to the zero address without an error, matching
// ecrecover. High-s signatures are accepted as-is.
func RecoverSigner(digest Hash, sig []byte) (Address, error) {
	parsed, err := ParseSignature(sig)
	if err != nil {
		return Address{}, err
	}
	compact := make([]byte, 0, SignatureLength)
	compact = append(compact, parsed.V)
	compact = append(compact, parsed.R[:]...)
	compact = append(compact, parsed.S[:]...)
	pub, _, err := ecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return Address{}, nil
	}
	return PubkeyToAddress(pub), nil
}

// PubkeyToAddress derives the account address of pub: the last 20 bytes of
// keccak256 over the uncompressed X ‖ Y coordinates.
func PubkeyToAddress(pub *secp256k1.PublicKey) Address {
	raw := pub.SerializeUncompressed()
	h := Keccak256(raw[1:])
	return BytesToAddress(h[12:])
}

// Sign produces an r ‖ s ‖ v signature over digest with v in {27, 28}.
// Only signer tooling and tests call this; the service never holds keys.
func Sign(key *PrivateKey, digest Hash) []byte {
	compact := ecdsa.SignCompact(key, digest[:], false)
	out := make([]byte, 0, SignatureLength)
	out = append(out, compact[1:33]...)
	out = append(out, compact[33:65]...)
	return append(out, compact[0])
}

// GenerateKey returns a fresh random signing key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// ParsePrivateKey decodes a 32-byte hex-encoded private key.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	b, err := DecodeHex(s)
	if err != nil || len(b) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	key := secp256k1.PrivKeyFromBytes(b)
	if key.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return key, nil
}

// KeyAddress is the account address controlled by key.
func KeyAddress(key *PrivateKey) Address {
	return PubkeyToAddress(key.PubKey())
}
