package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the journal table and its index if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type journalRepository struct {
	DB *sql.DB
}

// NewJournalRepository returns a domain.JournalRepository implemented with Postgres.
func NewJournalRepository(db *sql.DB) domain.JournalRepository {
	return &journalRepository{DB: db}
}

// sourceKey is the lowercase hex form used for the source column.
func sourceKey(a domain.Address) string {
	return ethsig.EncodeHex(a[:])
}

func (r *journalRepository) Append(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	query := `
		INSERT INTO notifications (kind, source, payload, emitted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, string(n.Kind), sourceKey(n.Source), payload, n.EmittedAt).
		Scan(&n.ID)
}

func (r *journalRepository) List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, error) {
	query := `
		SELECT id, payload
		FROM notifications
		WHERE id > $1`
	args := []any{filter.AfterID}
	if len(filter.Sources) > 0 {
		sources := make([]string, 0, len(filter.Sources))
		for _, s := range filter.Sources {
			sources = append(sources, sourceKey(s))
		}
		args = append(args, pq.Array(sources))
		query += fmt.Sprintf(` AND source = ANY($%d)`, len(args))
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Notification, 0)
	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		n := &domain.Notification{}
		if err := json.Unmarshal(payload, n); err != nil {
			return nil, fmt.Errorf("decode notification %d: %w", id, err)
		}
		n.ID = id
		out = append(out, n)
	}
	return out, rows.Err()
}
