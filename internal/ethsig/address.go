package ethsig

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressLength is the byte length of an account identity.
const AddressLength = 20

// HashLength is the byte length of a Keccak-256 digest.
const HashLength = 32

// ErrInvalidAddress is returned when a string is not a 20-byte hex address.
var ErrInvalidAddress = errors.New("invalid address")

// ErrInvalidHash is returned when a string is not a 32-byte hex digest.
var ErrInvalidHash = errors.New("invalid hash")

// Address is a 20-byte account identity (registry, factory, owner or attendee).
type Address [AddressLength]byte

// ParseAddress decodes a 0x-prefixed (or bare) 40 character hex string.
// Mixed-case input is accepted without enforcing the checksum.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw := strip0x(strings.TrimSpace(s))
	if len(raw) != 2*AddressLength {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	copy(a[:], b)
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on bad input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress keeps the last 20 bytes of b, left-padding shorter input.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Hex returns the EIP-55 mixed-case checksum encoding.
func (a Address) Hex() string {
	lower := []byte(hex.EncodeToString(a[:]))
	h := Keccak256(lower)
	for i, c := range lower {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := h[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			lower[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(lower)
}

func (a Address) String() string {
	return a.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Hash is a 32-byte Keccak-256 digest.
type Hash [HashLength]byte

// ParseHash decodes a 0x-prefixed (or bare) 64 character hex string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw := strip0x(strings.TrimSpace(s))
	if len(raw) != 2*HashLength {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a copy of the raw digest bytes.
func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

// Hex returns the 0x-prefixed lowercase hex encoding.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// DecodeHex decodes a 0x-prefixed (or bare) hex string of any length.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strip0x(strings.TrimSpace(s)))
}

// EncodeHex returns the 0x-prefixed lowercase hex encoding of b.
func EncodeHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
