package domain

import "context"

// CreateEventParams are the caller-supplied registry parameters.
type CreateEventParams struct {
	Name         string
	EventDate    uint32
	MaxAttendees uint32
}

// DigestPair is what an off-line signer needs for one attendee: the message
// digest and the prefixed digest that is actually signed.
// swagger:model DigestPair
type DigestPair struct {
	Registry      Address `json:"registry"`
	Attendee      Address `json:"attendee"`
	MessageDigest Hash    `json:"message_digest"`
	SignedDigest  Hash    `json:"signed_digest"`
}

// VerifyResult reports the outcome of a signature check.
// swagger:model VerifyResult
type VerifyResult struct {
	Valid  bool    `json:"valid"`
	Signer Address `json:"signer"`
	Owner  Address `json:"owner"`
}

// RegistryService is the application surface over the factory and its
// registries. Caller identities come from the authenticated session.
type RegistryService interface {
	CreateEvent(ctx context.Context, caller Address, params CreateEventParams) (*RegistryInfo, error)
	EventCount(ctx context.Context) int
	EventAt(ctx context.Context, index int) (Address, error)
	AllEvents(ctx context.Context) []Address
	GetEvent(ctx context.Context, registry Address) (*RegistryInfo, error)
	SetEventStatus(ctx context.Context, caller, registry Address, active bool) (*RegistryInfo, error)
	TransferOwnership(ctx context.Context, caller, registry, newOwner Address) (*RegistryInfo, error)
	RenounceOwnership(ctx context.Context, caller, registry Address) (*RegistryInfo, error)
	Digest(ctx context.Context, registry, attendee Address) (*DigestPair, error)
	VerifySignature(ctx context.Context, registry, attendee Address, signature []byte) (*VerifyResult, error)
	CheckIn(ctx context.Context, caller, registry Address, signature []byte) (*CheckIn, error)
	HasAttended(ctx context.Context, registry, attendee Address) (bool, error)
	ListAttendees(ctx context.Context, registry Address, page Page) ([]CheckIn, int, error)
	ListNotifications(ctx context.Context, filter NotificationFilter) ([]*Notification, error)
}
