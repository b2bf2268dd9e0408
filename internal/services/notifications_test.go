package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"guestcheckin/internal/domain"
	"guestcheckin/internal/ethsig"
	"guestcheckin/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalPublisher_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	journal := memory.NewJournalRepository()
	pub := NewJournalPublisher(journal, discardLogger(), 2)

	done := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(done)
	}()

	clock := &fakeClock{now: testNow}
	factory := domain.NewFactory(factoryAddr, clock, pub)
	ownerKey := testKey(1)
	r, err := factory.CreateEvent(ethsig.KeyAddress(ownerKey), "Conf", uint32(testNow.Add(time.Hour).Unix()), 10)
	require.NoError(t, err)
	for i := uint64(0); i < 5; i++ {
		guest := ethsig.KeyAddress(testKey(1000 + i))
		sig := ethsig.Sign(ownerKey, r.SignedDigest(r.MessageDigest(guest)))
		_, err := r.CheckIn(guest, sig)
		require.NoError(t, err)
	}

	pub.Close()
	<-done

	items, err := journal.List(ctx, domain.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, items, 9)
	kinds := make([]domain.NotificationKind, 0, len(items))
	for _, n := range items {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []domain.NotificationKind{
		domain.KindEventCreated,
		domain.KindOwnershipTransferred,
		domain.KindOwnershipTransferred,
		domain.KindEventDeployed,
		domain.KindAttendeeCheckedIn,
		domain.KindAttendeeCheckedIn,
		domain.KindAttendeeCheckedIn,
		domain.KindAttendeeCheckedIn,
		domain.KindAttendeeCheckedIn,
	}, kinds)
	assert.Equal(t, ethsig.KeyAddress(testKey(1000)), items[4].Attendee)
	assert.Equal(t, ethsig.KeyAddress(testKey(1004)), items[8].Attendee)
}

func TestJournalPublisher_LogsAppendErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := NewJournalPublisher(failingJournal{err: errors.New("disk full")}, logger, 0)

	done := make(chan struct{})
	go func() {
		pub.Run(context.Background())
		close(done)
	}()
	pub.Publish(domain.Notification{Kind: domain.KindEventStatusChanged, Source: factoryAddr})
	pub.Close()
	<-done

	assert.Contains(t, buf.String(), "journal append failed")
	assert.Contains(t, buf.String(), "disk full")
}

// flakyJournal fails the first `failures` appends, then delegates.
type flakyJournal struct {
	domain.JournalRepository
	mu       sync.Mutex
	failures int
	calls    int
}

func (j *flakyJournal) Append(ctx context.Context, n *domain.Notification) error {
	j.mu.Lock()
	j.calls++
	fail := j.calls <= j.failures
	j.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return j.JournalRepository.Append(ctx, n)
}

func TestJournalPublisher_RetriesFailedAppend(t *testing.T) {
	ctx := context.Background()
	journal := &flakyJournal{JournalRepository: memory.NewJournalRepository(), failures: 2}
	pub := NewJournalPublisher(journal, discardLogger(), 0)
	pub.retryBase = time.Millisecond

	done := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(done)
	}()

	clock := &fakeClock{now: testNow}
	factory := domain.NewFactory(factoryAddr, clock, pub)
	owner := ethsig.KeyAddress(testKey(1))
	r, err := factory.CreateEvent(owner, "Conf", uint32(testNow.Add(time.Hour).Unix()), 10)
	require.NoError(t, err)

	// Wait for the backlog to land before closing so no retry is cut short.
	require.Eventually(t, func() bool {
		items, err := journal.List(ctx, domain.NotificationFilter{})
		return err == nil && len(items) == 4
	}, 2*time.Second, 5*time.Millisecond)
	pub.Close()
	<-done

	items, err := journal.List(ctx, domain.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, domain.KindEventCreated, items[0].Kind)

	restored := domain.NewFactory(factoryAddr, clock, nil)
	applied, err := RestoreFactory(ctx, restored, journal)
	require.NoError(t, err)
	assert.Equal(t, 4, applied)
	got, ok := restored.Lookup(r.Address())
	require.True(t, ok)
	assert.Equal(t, owner, got.Owner())
}

func TestJournalPublisher_CloseAbandonsRetries(t *testing.T) {
	pub := NewJournalPublisher(failingJournal{err: errors.New("down")}, discardLogger(), 0)
	pub.retryBase = time.Hour

	done := make(chan struct{})
	go func() {
		pub.Run(context.Background())
		close(done)
	}()
	pub.Publish(domain.Notification{Kind: domain.KindEventStatusChanged, Source: factoryAddr})

	closed := make(chan struct{})
	go func() {
		pub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a failing journal")
	}
	<-done
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	attendee := ethsig.KeyAddress(testKey(1001))

	sink.Publish(domain.Notification{
		Kind:      domain.KindAttendeeCheckedIn,
		Source:    factoryAddr,
		Attendee:  attendee,
		Timestamp: 1772366400,
	})

	out := buf.String()
	assert.Contains(t, out, "msg=notification")
	assert.Contains(t, out, "kind=AttendeeCheckedIn")
	assert.Contains(t, out, "attendee="+attendee.Hex())
	assert.Contains(t, out, "timestamp=1772366400")
}

// recordingEmailService captures alerts for assertions.
type recordingEmailService struct {
	mu       sync.Mutex
	deployed []domain.EventDeployedEmailData
	status   []domain.EventStatusEmailData
	err      error
}

func (s *recordingEmailService) SendEventDeployed(ctx context.Context, data *domain.EventDeployedEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployed = append(s.deployed, *data)
	return s.err
}

func (s *recordingEmailService) SendEventStatusChanged(ctx context.Context, data *domain.EventStatusEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = append(s.status, *data)
	return s.err
}

func TestAlertSink(t *testing.T) {
	email := &recordingEmailService{}
	sink := NewAlertSink(email, "ops@example.com", discardLogger(), 4)

	done := make(chan struct{})
	go func() {
		sink.Run(context.Background())
		close(done)
	}()

	registry := ethsig.CreateAddress(factoryAddr, 1)
	sink.Publish(domain.Notification{Kind: domain.KindEventCreated, Source: registry})
	sink.Publish(domain.Notification{
		Kind:         domain.KindEventDeployed,
		Source:       factoryAddr,
		Registry:     registry,
		Name:         "Conf",
		EventDate:    uint32(testNow.Unix()),
		MaxAttendees: 100,
	})
	sink.Publish(domain.Notification{Kind: domain.KindAttendeeCheckedIn, Source: registry})
	sink.Publish(domain.Notification{Kind: domain.KindEventStatusChanged, Source: registry, Active: false})
	sink.Close()
	<-done

	require.Len(t, email.deployed, 1)
	assert.Equal(t, domain.EventDeployedEmailData{
		To:           "ops@example.com",
		Registry:     registry.Hex(),
		Name:         "Conf",
		EventDate:    testNow.Format(time.RFC1123),
		MaxAttendees: 100,
	}, email.deployed[0])

	require.Len(t, email.status, 1)
	assert.Equal(t, domain.EventStatusEmailData{
		To:       "ops@example.com",
		Registry: registry.Hex(),
		Active:   false,
	}, email.status[0])
}
