package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"guestcheckin/internal/domain"
)

// DefaultQueueSize is the buffer of each asynchronous notification consumer.
const DefaultQueueSize = 256

const (
	// appendTimeout bounds a single journal write.
	appendTimeout = 5 * time.Second
	// alertTimeout bounds a single alert email.
	alertTimeout = 15 * time.Second

	appendRetryBase = 100 * time.Millisecond
	appendRetryMax  = 10 * time.Second
)

// notificationQueue hands notifications from the registry critical section
// to a single consumer goroutine, preserving emission order. Publish blocks
// when the buffer is full rather than dropping.
type notificationQueue struct {
	ch   chan domain.Notification
	done chan struct{}
	once sync.Once
}

func newNotificationQueue(size int) notificationQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return notificationQueue{
		ch:   make(chan domain.Notification, size),
		done: make(chan struct{}),
	}
}

func (q *notificationQueue) enqueue(n domain.Notification) {
	q.ch <- n
}

// drain calls handle for every queued notification until close is called.
func (q *notificationQueue) drain(handle func(domain.Notification)) {
	defer close(q.done)
	for n := range q.ch {
		handle(n)
	}
}

// close stops accepting notifications and waits for the consumer to finish.
// No Publish may happen after close.
func (q *notificationQueue) close() {
	q.once.Do(func() { close(q.ch) })
	<-q.done
}

// JournalPublisher appends every notification to the journal in emission
// order. It is the durable side of the notification stream.
type JournalPublisher struct {
	repo   domain.JournalRepository
	logger *slog.Logger
	queue  notificationQueue

	// retryBase and retryMax bound the delay between append attempts.
	retryBase time.Duration
	retryMax  time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewJournalPublisher returns a publisher; call Run in its own goroutine.
func NewJournalPublisher(repo domain.JournalRepository, logger *slog.Logger, queueSize int) *JournalPublisher {
	return &JournalPublisher{
		repo:      repo,
		logger:    logger,
		queue:     newNotificationQueue(queueSize),
		retryBase: appendRetryBase,
		retryMax:  appendRetryMax,
		stop:      make(chan struct{}),
	}
}

// Publish implements domain.NotificationSink.
func (p *JournalPublisher) Publish(n domain.Notification) {
	p.queue.enqueue(n)
}

// Run appends queued notifications until Close is called. A failed append
// is retried with exponential backoff before the next notification is
// written, so the journal never has gaps that would break replay. Once Close
// has been called each remaining notification gets a single attempt.
func (p *JournalPublisher) Run(ctx context.Context) {
	p.queue.drain(func(n domain.Notification) {
		p.appendWithRetry(ctx, n)
	})
}

func (p *JournalPublisher) appendWithRetry(ctx context.Context, n domain.Notification) {
	delay := p.retryBase
	for attempt := 1; ; attempt++ {
		err := p.append(ctx, n)
		if err == nil {
			if attempt > 1 {
				p.logger.InfoContext(ctx, "journal append recovered", "kind", n.Kind, "attempts", attempt)
			}
			return
		}
		p.logger.ErrorContext(ctx, "journal append failed",
			"kind", n.Kind,
			"source", n.Source.Hex(),
			"attempt", attempt,
			"err", err,
		)
		select {
		case <-p.stop:
			p.logger.ErrorContext(ctx, "journal append abandoned on shutdown", "kind", n.Kind, "source", n.Source.Hex())
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, p.retryMax)
	}
}

func (p *JournalPublisher) append(ctx context.Context, n domain.Notification) error {
	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()
	return p.repo.Append(appendCtx, &n)
}

// Close flushes the queue and stops Run.
func (p *JournalPublisher) Close() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.queue.close()
}

// LogSink writes one structured log line per notification.
type LogSink struct {
	Logger *slog.Logger
}

// Publish implements domain.NotificationSink.
func (s LogSink) Publish(n domain.Notification) {
	attrs := []any{"kind", n.Kind, "source", n.Source.Hex()}
	switch n.Kind {
	case domain.KindEventCreated:
		attrs = append(attrs, "name", n.Name, "event_date", n.EventDate, "max_attendees", n.MaxAttendees)
	case domain.KindEventDeployed:
		attrs = append(attrs, "registry", n.Registry.Hex(), "name", n.Name)
	case domain.KindEventStatusChanged:
		attrs = append(attrs, "active", n.Active)
	case domain.KindAttendeeCheckedIn:
		attrs = append(attrs, "attendee", n.Attendee.Hex(), "timestamp", n.Timestamp)
	case domain.KindOwnershipTransferred:
		attrs = append(attrs, "previous_owner", n.PreviousOwner.Hex(), "new_owner", n.NewOwner.Hex())
	}
	s.Logger.Info("notification", attrs...)
}

// AlertSink emails an operator when a registry is deployed or its status
// changes. Sending happens on the Run goroutine.
type AlertSink struct {
	email  domain.EmailService
	to     string
	logger *slog.Logger
	queue  notificationQueue
}

// NewAlertSink returns a sink that alerts the given recipient.
func NewAlertSink(email domain.EmailService, to string, logger *slog.Logger, queueSize int) *AlertSink {
	return &AlertSink{
		email:  email,
		to:     to,
		logger: logger,
		queue:  newNotificationQueue(queueSize),
	}
}

// Publish implements domain.NotificationSink. Other kinds are ignored.
func (s *AlertSink) Publish(n domain.Notification) {
	switch n.Kind {
	case domain.KindEventDeployed, domain.KindEventStatusChanged:
		s.queue.enqueue(n)
	}
}

// Run sends queued alerts until Close is called. Alerts queued before
// shutdown are still sent after ctx is cancelled.
func (s *AlertSink) Run(ctx context.Context) {
	s.queue.drain(func(n domain.Notification) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
		defer cancel()
		var err error
		switch n.Kind {
		case domain.KindEventDeployed:
			err = s.email.SendEventDeployed(ctx, &domain.EventDeployedEmailData{
				To:           s.to,
				Registry:     n.Registry.Hex(),
				Name:         n.Name,
				EventDate:    time.Unix(int64(n.EventDate), 0).UTC().Format(time.RFC1123),
				MaxAttendees: n.MaxAttendees,
			})
		case domain.KindEventStatusChanged:
			err = s.email.SendEventStatusChanged(ctx, &domain.EventStatusEmailData{
				To:       s.to,
				Registry: n.Source.Hex(),
				Active:   n.Active,
			})
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "alert email failed", "kind", n.Kind, "err", err)
		}
	})
}

// Close flushes pending alerts and stops Run.
func (s *AlertSink) Close() {
	s.queue.close()
}
