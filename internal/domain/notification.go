package domain

import (
	"context"
	"time"
)

// NotificationKind names an append-only notification consumed by indexers.
type NotificationKind string

const (
	KindEventCreated         NotificationKind = "EventCreated"
	KindEventStatusChanged   NotificationKind = "EventStatusChanged"
	KindAttendeeCheckedIn    NotificationKind = "AttendeeCheckedIn"
	KindEventDeployed        NotificationKind = "EventDeployed"
	KindOwnershipTransferred NotificationKind = "OwnershipTransferred"
)

// Notification is a single emitted record. Source is the registry or factory
// that emitted it; only the fields relevant to Kind are populated.
// swagger:model Notification
type Notification struct {
	ID        int64            `json:"id,omitempty"`
	Kind      NotificationKind `json:"kind"`
	Source    Address          `json:"source"`
	EmittedAt time.Time        `json:"emitted_at"`

	// EventCreated, EventDeployed
	Name         string `json:"name,omitempty"`
	EventDate    uint32 `json:"event_date,omitempty"`
	MaxAttendees uint32 `json:"max_attendees,omitempty"`

	// EventDeployed
	Registry Address `json:"registry,omitzero"`

	// EventStatusChanged
	Active bool `json:"active"`

	// AttendeeCheckedIn
	Attendee  Address `json:"attendee,omitzero"`
	Timestamp uint64  `json:"timestamp,omitempty"`

	// OwnershipTransferred
	PreviousOwner Address `json:"previous_owner,omitzero"`
	NewOwner      Address `json:"new_owner,omitzero"`
}

// NotificationSink receives notifications in emission order. Publish is
// called while the emitting registry holds its lock, so implementations
// must not call back into the registry synchronously.
type NotificationSink interface {
	Publish(n Notification)
}

// Sinks fans a notification out to every sink in order.
type Sinks []NotificationSink

// Publish implements NotificationSink.
func (s Sinks) Publish(n Notification) {
	for _, sink := range s {
		if sink != nil {
			sink.Publish(n)
		}
	}
}

// NotificationFilter selects a page of the journal.
type NotificationFilter struct {
	AfterID int64
	Limit   int
	Sources []Address
}

// JournalRepository persists notifications in emission order. The journal is
// the durable record from which factory state is rebuilt on startup.
type JournalRepository interface {
	Append(ctx context.Context, n *Notification) error
	List(ctx context.Context, filter NotificationFilter) ([]*Notification, error)
}
