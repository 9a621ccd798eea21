// Package notify delivers the notices and audit records produced by workflow
// transitions. Delivery happens after the letter is committed, on a small
// worker pool, and a failing sink never fails the transition that caused it.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"suratapi/internal/workflow"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notify: dispatcher closed")

// Publisher accepts the outcome of a committed transition.
type Publisher interface {
	Publish(ctx context.Context, out workflow.Outcome) error
}

// Event is one notice or one audit record, stamped with an ID so a retried
// delivery can be recognised by idempotent sinks. Exactly one of Notice and
// Audit is set.
type Event struct {
	ID         string
	Transition string
	At         time.Time
	Notice     *workflow.Notice
	Audit      *workflow.AuditRecord
}

// Kind is "notification" or "audit".
func (e Event) Kind() string {
	if e.Notice != nil {
		return "notification"
	}
	return "audit"
}

// LetterID returns the letter the event is about.
func (e Event) LetterID() string {
	if e.Notice != nil {
		return e.Notice.LetterID
	}
	if e.Audit != nil {
		return e.Audit.LetterID
	}
	return ""
}

// Sink is a delivery target. Deliver may be called more than once for the same event.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Options tune the dispatcher. Zero values pick the defaults.
type Options struct {
	Workers       int
	QueueSize     int
	MaxTries      uint
	RetryInterval time.Duration
	Registerer    prometheus.Registerer
	Now           func() time.Time
	NewID         func() string
}

// Dispatcher fans events out to sinks on a bounded worker pool.
type Dispatcher struct {
	sinks    []Sink
	log      zerolog.Logger
	queue    chan job
	maxTries uint
	interval time.Duration
	now      func() time.Time
	newID    func() string

	deliveries *prometheus.CounterVec

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type job struct {
	ctx   context.Context
	event Event
}

// NewDispatcher starts the workers. Call Close to drain and stop them.
func NewDispatcher(log zerolog.Logger, opts Options, sinks ...Sink) (*Dispatcher, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = 5
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 200 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	d := &Dispatcher{
		sinks:    sinks,
		log:      log.With().Str("component", "notify").Logger(),
		queue:    make(chan job, opts.QueueSize),
		maxTries: opts.MaxTries,
		interval: opts.RetryInterval,
		now:      opts.Now,
		newID:    opts.NewID,
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suratapi_notify_deliveries_total",
				Help: "Events delivered to notification sinks, by sink and result.",
			},
			[]string{"sink", "result"},
		),
	}
	if opts.Registerer != nil {
		if err := opts.Registerer.Register(d.deliveries); err != nil {
			return nil, err
		}
	}

	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d, nil
}

// Publish splits out into events and queues them. It blocks while the queue is
// full, until ctx is done. The request's cancellation does not reach the sinks.
func (d *Dispatcher) Publish(ctx context.Context, out workflow.Outcome) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	detached := context.WithoutCancel(ctx)
	for _, ev := range d.events(out) {
		select {
		case d.queue <- job{ctx: detached, event: ev}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Dispatcher) events(out workflow.Outcome) []Event {
	at := d.now()
	evs := make([]Event, 0, len(out.Notices)+len(out.Audit))
	for i := range out.Notices {
		n := out.Notices[i]
		evs = append(evs, Event{ID: d.newID(), Transition: out.Transition, At: at, Notice: &n})
	}
	for i := range out.Audit {
		a := out.Audit[i]
		evs = append(evs, Event{ID: d.newID(), Transition: out.Transition, At: at, Audit: &a})
	}
	return evs
}

// Close stops accepting events, waits for queued ones to be delivered or for
// ctx to expire, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		for _, s := range d.sinks {
			d.deliver(j.ctx, s, j.event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s Sink, e Event) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.interval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, s.Deliver(ctx, e)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(d.maxTries))
	if err != nil {
		d.deliveries.WithLabelValues(s.Name(), "failed").Inc()
		d.log.Warn().Err(err).
			Str("sink", s.Name()).
			Str("event_id", e.ID).
			Str("kind", e.Kind()).
			Str("letter_id", e.LetterID()).
			Msg("notify: delivery failed (non-fatal)")
		return
	}
	d.deliveries.WithLabelValues(s.Name(), "ok").Inc()
}
