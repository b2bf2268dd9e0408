package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
)

var (
	testRegistry = ethsig.MustParseAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8")
	testAttendee = ethsig.MustParseAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")
	testEmitted  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestJournalRepository_Append(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO notifications \(kind, source, payload, emitted_at\)`).
					WithArgs("AttendeeCheckedIn", "0x343c43a37d37dff08ae8c4a11544c718abb4fcf8", sqlmock.AnyArg(), testEmitted).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
			},
			wantID: 42,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewJournalRepository(db)
			n := &domain.Notification{
				Kind:      domain.KindAttendeeCheckedIn,
				Source:    testRegistry,
				EmittedAt: testEmitted,
				Attendee:  testAttendee,
				Timestamp: uint64(testEmitted.Unix()),
			}
			err = repo.Append(ctx, n)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, n.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestJournalRepository_List(t *testing.T) {
	ctx := context.Background()
	payload := `{"kind":"AttendeeCheckedIn","source":"0x343c43a37d37dff08ae8c4a11544c718abb4fcf8","emitted_at":"2026-03-01T12:00:00Z","active":false,"attendee":"0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf","timestamp":1772366400}`

	tests := []struct {
		name    string
		filter  domain.NotificationFilter
		mock    func(mock sqlmock.Sqlmock)
		want    int
		wantErr bool
	}{
		{
			name:   "all after id",
			filter: domain.NotificationFilter{AfterID: 10},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, payload\s+FROM notifications\s+WHERE id > \$1 ORDER BY id$`).
					WithArgs(int64(10)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).AddRow(int64(11), []byte(payload)))
			},
			want: 1,
		},
		{
			name:   "filtered by source with limit",
			filter: domain.NotificationFilter{Sources: []domain.Address{testRegistry}, Limit: 5},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE id > \$1 AND source = ANY\(\$2\) ORDER BY id LIMIT \$3`).
					WithArgs(int64(0), sqlmock.AnyArg(), 5).
					WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).
						AddRow(int64(1), []byte(payload)).
						AddRow(int64(2), []byte(payload)))
			},
			want: 2,
		},
		{
			name:   "corrupt payload",
			filter: domain.NotificationFilter{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, payload`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).AddRow(int64(1), []byte("{")))
			},
			wantErr: true,
		},
		{
			name:   "db error",
			filter: domain.NotificationFilter{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, payload`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewJournalRepository(db)
			got, err := repo.List(ctx, tt.filter)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.want)
			require.Equal(t, domain.KindAttendeeCheckedIn, got[0].Kind)
			require.Equal(t, testRegistry, got[0].Source)
			require.Equal(t, testAttendee, got[0].Attendee)
			require.NotZero(t, got[0].ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS notifications`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
