package domain

import (
	"fmt"
	"sync"

	"guestcheckin/internal/ethsig"
)

// Factory creates registries and keeps an append-only index of them in
// creation order. Registry identities are derived from the factory address
// and a creation nonce, so they are stable across restarts.
type Factory struct {
	mu sync.RWMutex

	address    Address
	nonce      uint64
	events     []Address
	registries map[Address]*Registry

	clock Clock
	sink  NotificationSink
}

// NewFactory returns an empty factory identified by address.
func NewFactory(address Address, clock Clock, sink NotificationSink) *Factory {
	if clock == nil {
		clock = SystemClock{}
	}
	if sink == nil {
		sink = Sinks(nil)
	}
	return &Factory{
		address:    address,
		nonce:      1,
		registries: make(map[Address]*Registry),
		clock:      clock,
		sink:       sink,
	}
}

// Address returns the factory identity.
func (f *Factory) Address() Address { return f.address }

// CreateEvent deploys a registry for caller. The registry is constructed
// with the factory as owner and ownership is handed to caller before the
// registry is indexed, so caller is the signer of record from the start.
func (f *Factory) CreateEvent(caller Address, name string, eventDate, maxAttendees uint32) (*Registry, error) {
	if caller.IsZero() {
		return nil, ErrInvalidOwner
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	addr := ethsig.CreateAddress(f.address, f.nonce)
	r, err := NewRegistry(addr, name, eventDate, maxAttendees, f.address, f.clock, f.sink)
	if err != nil {
		return nil, err
	}
	f.nonce++
	if err := r.TransferOwnership(f.address, caller); err != nil {
		return nil, fmt.Errorf("transfer ownership: %w", err)
	}

	f.registries[addr] = r
	f.events = append(f.events, addr)
	f.sink.Publish(Notification{
		Kind:         KindEventDeployed,
		Source:       f.address,
		EmittedAt:    f.clock.Now(),
		Registry:     addr,
		Name:         name,
		EventDate:    eventDate,
		MaxAttendees: maxAttendees,
	})
	return r, nil
}

// EventCount returns the number of indexed registries.
func (f *Factory) EventCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// EventAt returns the index-th created registry.
func (f *Factory) EventAt(index int) (Address, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if index < 0 || index >= len(f.events) {
		return Address{}, fmt.Errorf("%w: %d (count %d)", ErrIndexOutOfRange, index, len(f.events))
	}
	return f.events[index], nil
}

// AllEvents returns a snapshot of every registry identity in creation order.
func (f *Factory) AllEvents() []Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Address, len(f.events))
	copy(out, f.events)
	return out
}

// Lookup returns the registry with the given identity.
func (f *Factory) Lookup(addr Address) (*Registry, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	r, ok := f.registries[addr]
	return r, ok
}

// Replay applies a journaled notification without validation and without
// emitting. Notifications must be replayed in their original order.
func (f *Factory) Replay(n Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch n.Kind {
	case KindEventCreated:
		if _, ok := f.registries[n.Source]; ok {
			return fmt.Errorf("replay %s: registry %s already exists", n.Kind, n.Source)
		}
		f.registries[n.Source] = restoreRegistry(n.Source, n.Name, n.EventDate, n.MaxAttendees, f.clock, f.sink)
		f.nonce++
	case KindEventDeployed:
		if _, ok := f.registries[n.Registry]; !ok {
			return fmt.Errorf("replay %s: %w: registry %s", n.Kind, ErrNotFound, n.Registry)
		}
		f.events = append(f.events, n.Registry)
	case KindEventStatusChanged, KindOwnershipTransferred, KindAttendeeCheckedIn:
		r, ok := f.registries[n.Source]
		if !ok {
			return fmt.Errorf("replay %s: %w: registry %s", n.Kind, ErrNotFound, n.Source)
		}
		r.apply(n)
	default:
		return fmt.Errorf("replay: unknown notification kind %q", n.Kind)
	}
	return nil
}
