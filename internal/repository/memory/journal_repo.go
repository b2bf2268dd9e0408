package memory

import (
	"context"
	"sync"

	"guestcheckin/internal/domain"
)

// journalRepository keeps the journal in process memory. It is used when no
// database is configured; state does not survive a restart.
type journalRepository struct {
	mu     sync.RWMutex
	items  []*domain.Notification
	nextID int64
}

// NewJournalRepository returns an in-memory domain.JournalRepository.
func NewJournalRepository() domain.JournalRepository {
	return &journalRepository{nextID: 1}
}

func (r *journalRepository) Append(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID
	r.nextID++
	stored := *n
	r.items = append(r.items, &stored)
	return nil
}

func (r *journalRepository) List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sources map[domain.Address]struct{}
	if len(filter.Sources) > 0 {
		sources = make(map[domain.Address]struct{}, len(filter.Sources))
		for _, s := range filter.Sources {
			sources[s] = struct{}{}
		}
	}

	out := make([]*domain.Notification, 0)
	for _, n := range r.items {
		if n.ID <= filter.AfterID {
			continue
		}
		if sources != nil {
			if _, ok := sources[n.Source]; !ok {
				continue
			}
		}
		cp := *n
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}
