package ethsig

import (
	"strconv"

	"golang.org/x/crypto/sha3"
)

// personalMessagePrefix is the domain-separation prefix used by wallet
// "personal_sign" tooling. The decimal byte length of the message follows it.
const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

// Keccak256 hashes the concatenation of data with legacy Keccak-256.
func Keccak256(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h Hash
	d.Sum(h[:0])
	return h
}

// MessageDigest binds a check-in authorization to one registry, its event
// name and one attendee: keccak256(registry ‖ name ‖ attendee), tightly packed.
func MessageDigest(registry Address, name string, attendee Address) Hash {
	return Keccak256(registry[:], []byte(name), attendee[:])
}

// TextHash returns the personal-message hash of msg:
// keccak256("\x19Ethereum Signed Message:\n" ‖ len(msg) ‖ msg).
func TextHash(msg []byte) Hash {
	prefix := personalMessagePrefix + strconv.Itoa(len(msg))
	return Keccak256([]byte(prefix), msg)
}

// SignedDigest is the value an off-chain signer actually signs for a
// 32-byte message digest: keccak256("\x19Ethereum Signed Message:\n32" ‖ digest).
func SignedDigest(digest Hash) Hash {
	return TextHash(digest[:])
}

// CreateAddress derives the identity of the nonce-th registry created by
// sender: the last 20 bytes of keccak256(rlp([sender, nonce])).
func CreateAddress(sender Address, nonce uint64) Address {
	h := Keccak256(rlpSenderNonce(sender, nonce))
	return BytesToAddress(h[12:])
}

// rlpSenderNonce encodes the two-item list [sender, nonce]. The payload is
// always shorter than 56 bytes, so only the short list form is needed.
func rlpSenderNonce(sender Address, nonce uint64) []byte {
	payload := make([]byte, 0, 1+AddressLength+9)
	payload = append(payload, 0x80+AddressLength)
	payload = append(payload, sender[:]...)
	switch {
	case nonce == 0:
		payload = append(payload, 0x80)
	case nonce < 0x80:
		payload = append(payload, byte(nonce))
	default:
		var be []byte
		for n := nonce; n > 0; n >>= 8 {
			be = append([]byte{byte(n)}, be...)
		}
		payload = append(payload, 0x80+byte(len(be)))
		payload = append(payload, be...)
	}
	return append([]byte{0xc0 + byte(len(payload))}, payload...)
}
