package domain

import "guestcheckin/internal/ethsig"

// Address identifies a registry, the factory, an owner or an attendee.
type Address = ethsig.Address

// Hash is a 32-byte digest.
type Hash = ethsig.Hash
