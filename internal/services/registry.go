package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"guestcheckin/internal/domain"
)

// replayBatchSize bounds each journal page read while restoring state.
const replayBatchSize = 500

type registryService struct {
	factory        *domain.Factory
	journal        domain.JournalRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistryService exposes factory and its registries as a
// domain.RegistryService. journal serves the notification feed.
func NewRegistryService(factory *domain.Factory, journal domain.JournalRepository, logger *slog.Logger, timeout time.Duration) domain.RegistryService {
	return &registryService{
		factory:        factory,
		journal:        journal,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// RestoreFactory replays the whole journal onto factory, which must be
// freshly created and not yet serving requests. It returns the number of
// notifications applied.
func RestoreFactory(ctx context.Context, factory *domain.Factory, journal domain.JournalRepository) (int, error) {
	var afterID int64
	applied := 0
	for {
		batch, err := journal.List(ctx, domain.NotificationFilter{AfterID: afterID, Limit: replayBatchSize})
		if err != nil {
			return applied, fmt.Errorf("read journal after %d: %w", afterID, err)
		}
		for _, n := range batch {
			if err := factory.Replay(*n); err != nil {
				return applied, fmt.Errorf("replay notification %d: %w", n.ID, err)
			}
			afterID = n.ID
			applied++
		}
		if len(batch) < replayBatchSize {
			return applied, nil
		}
	}
}

func (s *registryService) lookup(addr domain.Address) (*domain.Registry, error) {
	r, ok := s.factory.Lookup(addr)
	if !ok {
		return nil, fmt.Errorf("registry %s: %w", addr, domain.ErrNotFound)
	}
	return r, nil
}

func (s *registryService) CreateEvent(ctx context.Context, caller domain.Address, params domain.CreateEventParams) (*domain.RegistryInfo, error) {
	r, err := s.factory.CreateEvent(caller, params.Name, params.EventDate, params.MaxAttendees)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event deployed",
		"registry", r.Address().Hex(),
		"owner", caller.Hex(),
		"event_date", params.EventDate,
		"max_attendees", params.MaxAttendees,
	)
	info := r.Snapshot()
	return &info, nil
}

func (s *registryService) EventCount(ctx context.Context) int {
	return s.factory.EventCount()
}

func (s *registryService) EventAt(ctx context.Context, index int) (domain.Address, error) {
	return s.factory.EventAt(index)
}

func (s *registryService) AllEvents(ctx context.Context) []domain.Address {
	return s.factory.AllEvents()
}

func (s *registryService) GetEvent(ctx context.Context, registry domain.Address) (*domain.RegistryInfo, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	info := r.Snapshot()
	return &info, nil
}

func (s *registryService) SetEventStatus(ctx context.Context, caller, registry domain.Address, active bool) (*domain.RegistryInfo, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	if err := r.SetEventStatus(caller, active); err != nil {
		return nil, err
	}
	info := r.Snapshot()
	return &info, nil
}

func (s *registryService) TransferOwnership(ctx context.Context, caller, registry, newOwner domain.Address) (*domain.RegistryInfo, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	if err := r.TransferOwnership(caller, newOwner); err != nil {
		return nil, err
	}
	info := r.Snapshot()
	return &info, nil
}

// RenounceOwnership leaves the registry without an owner; no signature
// verifies against it afterwards.
func (s *registryService) RenounceOwnership(ctx context.Context, caller, registry domain.Address) (*domain.RegistryInfo, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	if err := r.RenounceOwnership(caller); err != nil {
		return nil, err
	}
	info := r.Snapshot()
	return &info, nil
}

func (s *registryService) Digest(ctx context.Context, registry, attendee domain.Address) (*domain.DigestPair, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	message := r.MessageDigest(attendee)
	return &domain.DigestPair{
		Registry:      registry,
		Attendee:      attendee,
		MessageDigest: message,
		SignedDigest:  r.SignedDigest(message),
	}, nil
}

func (s *registryService) VerifySignature(ctx context.Context, registry, attendee domain.Address, signature []byte) (*domain.VerifyResult, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	res, err := r.Verify(attendee, signature)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *registryService) CheckIn(ctx context.Context, caller, registry domain.Address, signature []byte) (*domain.CheckIn, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, err
	}
	rec, err := r.CheckIn(caller, signature)
	if err != nil {
		s.logger.DebugContext(ctx, "check-in rejected",
			"registry", registry.Hex(),
			"attendee", caller.Hex(),
			"reason", err.Error(),
		)
		return nil, err
	}
	return &rec, nil
}

func (s *registryService) HasAttended(ctx context.Context, registry, attendee domain.Address) (bool, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return false, err
	}
	return r.HasAttended(attendee), nil
}

func (s *registryService) ListAttendees(ctx context.Context, registry domain.Address, page domain.Page) ([]domain.CheckIn, int, error) {
	r, err := s.lookup(registry)
	if err != nil {
		return nil, 0, err
	}
	all := r.Attendees()
	lo, hi := page.Bounds(len(all))
	return all[lo:hi:hi], len(all), nil
}

func (s *registryService) ListNotifications(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	if s.journal == nil {
		return nil, errors.New("journal not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.journal.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
