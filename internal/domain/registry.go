package domain

import (
	"sync"

	"guestcheckin/internal/ethsig"
)

// GracePeriodSeconds is how long after the event date check-in stays open.
const GracePeriodSeconds = 24 * 60 * 60

// CheckIn records one admitted attendee.
// swagger:model CheckIn
type CheckIn struct {
	Registry  Address `json:"registry"`
	Attendee  Address `json:"attendee"`
	Timestamp uint64  `json:"timestamp"`
}

// RegistryInfo is a consistent read of a registry's state.
// swagger:model RegistryInfo
type RegistryInfo struct {
	Address         Address `json:"address"`
	Name            string  `json:"name"`
	EventDate       uint32  `json:"event_date"`
	MaxAttendees    uint32  `json:"max_attendees"`
	AttendeeCount   uint32  `json:"attendee_count"`
	IsActive        bool    `json:"is_active"`
	Owner           Address `json:"owner"`
	CheckInDeadline uint64  `json:"check_in_deadline"`
}

// Registry holds one event's configuration and admission state. The
// organizer (owner) authorizes attendees off-line by signing
// SignedDigest(MessageDigest(attendee)); attendees present that signature
// to CheckIn.
//
// All operations take the registry lock for their whole duration: checks,
// effects and the resulting notification form a single critical section.
type Registry struct {
	mu sync.Mutex

	address      Address
	name         string
	eventDate    uint32
	maxAttendees uint32

	attendeeCount uint32
	isActive      bool
	owner         Address
	attended      map[Address]uint64
	order         []Address

	clock Clock
	sink  NotificationSink
}

// NewRegistry creates the registry identified by address, owned by creator.
// eventDate must be strictly after the clock's current time.
func NewRegistry(address Address, name string, eventDate, maxAttendees uint32, creator Address, clock Clock, sink NotificationSink) (*Registry, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if uint64(eventDate) <= unixSeconds(clock.Now()) {
		return nil, ErrPastEventDate
	}
	if creator.IsZero() {
		return nil, ErrInvalidOwner
	}
	r := restoreRegistry(address, name, eventDate, maxAttendees, clock, sink)
	r.owner = creator

	r.emit(Notification{
		Kind:         KindEventCreated,
		Name:         name,
		EventDate:    eventDate,
		MaxAttendees: maxAttendees,
	})
	r.emit(Notification{
		Kind:     KindOwnershipTransferred,
		NewOwner: creator,
	})
	return r, nil
}

// restoreRegistry builds a registry without validation or notifications.
// The owner is left zero for the caller to set.
func restoreRegistry(address Address, name string, eventDate, maxAttendees uint32, clock Clock, sink NotificationSink) *Registry {
	if clock == nil {
		clock = SystemClock{}
	}
	if sink == nil {
		sink = Sinks(nil)
	}
	return &Registry{
		address:      address,
		name:         name,
		eventDate:    eventDate,
		maxAttendees: maxAttendees,
		isActive:     true,
		attended:     make(map[Address]uint64),
		clock:        clock,
		sink:         sink,
	}
}

// Address returns the registry identity.
func (r *Registry) Address() Address { return r.address }

// Name returns the immutable event name.
func (r *Registry) Name() string { return r.name }

// EventDate returns the immutable event date as a Unix timestamp.
func (r *Registry) EventDate() uint32 { return r.eventDate }

// MaxAttendees returns the immutable capacity.
func (r *Registry) MaxAttendees() uint32 { return r.maxAttendees }

// Owner returns the current owner.
func (r *Registry) Owner() Address {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}

// IsActive reports whether check-in is currently enabled.
func (r *Registry) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isActive
}

// AttendeeCount returns the number of admitted attendees.
func (r *Registry) AttendeeCount() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attendeeCount
}

// HasAttended reports whether attendee has checked in.
func (r *Registry) HasAttended(attendee Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.attended[attendee]
	return ok
}

// Snapshot returns the registry state as of a single instant.
func (r *Registry) Snapshot() RegistryInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RegistryInfo{
		Address:         r.address,
		Name:            r.name,
		EventDate:       r.eventDate,
		MaxAttendees:    r.maxAttendees,
		AttendeeCount:   r.attendeeCount,
		IsActive:        r.isActive,
		Owner:           r.owner,
		CheckInDeadline: r.deadline(),
	}
}

// Attendees returns the admitted attendees in check-in order.
func (r *Registry) Attendees() []CheckIn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CheckIn, 0, len(r.order))
	for _, a := range r.order {
		out = append(out, CheckIn{Registry: r.address, Attendee: a, Timestamp: r.attended[a]})
	}
	return out
}

// SetEventStatus enables or disables check-in. Owner only.
func (r *Registry) SetEventStatus(caller Address, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	r.isActive = active
	r.emit(Notification{Kind: KindEventStatusChanged, Active: active})
	return nil
}

// TransferOwnership hands control, and with it the signer-of-record role,
// to newOwner. Owner only.
func (r *Registry) TransferOwnership(caller, newOwner Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	if newOwner.IsZero() {
		return ErrInvalidOwner
	}
	r.setOwner(newOwner)
	return nil
}

// RenounceOwnership leaves the registry without an owner. Status can no
// longer change and no signature verifies afterwards.
func (r *Registry) RenounceOwnership(caller Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.owner {
		return ErrNotOwner
	}
	r.setOwner(Address{})
	return nil
}

func (r *Registry) setOwner(newOwner Address) {
	previous := r.owner
	r.owner = newOwner
	r.emit(Notification{
		Kind:          KindOwnershipTransferred,
		PreviousOwner: previous,
		NewOwner:      newOwner,
	})
}

// MessageDigest is keccak256(registry ‖ name ‖ attendee).
func (r *Registry) MessageDigest(attendee Address) Hash {
	return ethsig.MessageDigest(r.address, r.name, attendee)
}

// SignedDigest applies the personal-message prefix to digest.
func (r *Registry) SignedDigest(digest Hash) Hash {
	return ethsig.SignedDigest(digest)
}

// RecoverSigner recovers the address that signed digest. It fails only on
// structurally malformed signatures.
func (r *Registry) RecoverSigner(digest Hash, signature []byte) (Address, error) {
	return ethsig.RecoverSigner(digest, signature)
}

// VerifySignature reports whether signature authorizes attendee, i.e. was
// produced by the current owner's key.
func (r *Registry) VerifySignature(attendee Address, signature []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verifySignature(attendee, signature)
}

// Verify recovers the signer of attendee's authorization and compares it
// with the owner, all against one consistent view of the registry.
func (r *Registry) Verify(attendee Address, signature []byte) (VerifyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	signer, err := r.RecoverSigner(r.SignedDigest(r.MessageDigest(attendee)), signature)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Valid: r.authorizedBy(signer), Signer: signer, Owner: r.owner}, nil
}

func (r *Registry) verifySignature(attendee Address, signature []byte) (bool, error) {
	signer, err := r.RecoverSigner(r.SignedDigest(r.MessageDigest(attendee)), signature)
	if err != nil {
		return false, err
	}
	return r.authorizedBy(signer), nil
}

// authorizedBy reports whether signer is the owner. An unrecoverable
// signature yields the zero address; it must never match a renounced owner.
func (r *Registry) authorizedBy(signer Address) bool {
	return !signer.IsZero() && signer == r.owner
}

// CheckIn admits caller. Checks run in a fixed order and the first failure
// wins: inactive, past the grace window, already admitted, at capacity,
// signature. State changes only when every check passes, and the
// AttendeeCheckedIn notification is emitted after the state change.
func (r *Registry) CheckIn(caller Address, signature []byte) (CheckIn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := unixSeconds(r.clock.Now())
	if !r.isActive {
		return CheckIn{}, ErrEventInactive
	}
	if now > r.deadline() {
		return CheckIn{}, ErrEventEnded
	}
	if _, ok := r.attended[caller]; ok {
		return CheckIn{}, ErrAlreadyCheckedIn
	}
	if r.attendeeCount >= r.maxAttendees {
		return CheckIn{}, ErrCapacityReached
	}
	ok, err := r.verifySignature(caller, signature)
	if err != nil {
		return CheckIn{}, err
	}
	if !ok {
		return CheckIn{}, ErrInvalidSignature
	}

	r.admit(caller, now)
	r.emit(Notification{Kind: KindAttendeeCheckedIn, Attendee: caller, Timestamp: now})
	return CheckIn{Registry: r.address, Attendee: caller, Timestamp: now}, nil
}

func (r *Registry) admit(attendee Address, at uint64) {
	r.attended[attendee] = at
	r.order = append(r.order, attendee)
	r.attendeeCount++
}

// deadline is computed in 64 bits so a date near the uint32 limit does not wrap.
func (r *Registry) deadline() uint64 {
	return uint64(r.eventDate) + GracePeriodSeconds
}

func (r *Registry) emit(n Notification) {
	n.Source = r.address
	n.EmittedAt = r.clock.Now()
	r.sink.Publish(n)
}

// apply replays a journaled notification onto the registry.
func (r *Registry) apply(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch n.Kind {
	case KindEventStatusChanged:
		r.isActive = n.Active
	case KindOwnershipTransferred:
		r.owner = n.NewOwner
	case KindAttendeeCheckedIn:
		if _, ok := r.attended[n.Attendee]; !ok {
			r.admit(n.Attendee, n.Timestamp)
		}
	}
}
