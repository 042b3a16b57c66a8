// Package dispatcher routes command strings from the host application (the
// location-service collaborator and the game client) to registered
// handlers. A handler runs synchronously by default or behind a buffered
// queue when registered with Buffered.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one incoming command with its raw arguments.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is the logging surface the dispatcher needs. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type registration struct {
	queueSize int
	blocking  bool
	logged    bool
}

// Option configures handler registration.
type Option func(*registration)

// Buffered runs the handler on its own goroutine behind a queue of the
// given size. Dispatch returns "queued" immediately.
func Buffered(size int) Option {
	return func(r *registration) { r.queueSize = size }
}

// Blocking makes a buffered handler wait for queue space instead of
// dropping the event.
func Blocking() Option {
	return func(r *registration) { r.blocking = true }
}

// Logged wraps the handler with debug/error logging and timing.
func Logged() Option {
	return func(r *registration) { r.logged = true }
}

// Dispatcher routes events to registered handlers and exposes queue depth
// and throughput metrics through the global OTel meter.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	processed metric.Int64Counter
	dropped   metric.Int64Counter

	mu     sync.RWMutex
	queues map[string]chan Event
}

// New creates a Dispatcher. Metrics are no-ops until an OTel meter
// provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
		logger:   logger,
	}
	if err := d.initMetrics(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) initMetrics() error {
	m := meter()

	gauge, err := m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of events in queue"),
	)
	if err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}
	if _, err := m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		for cmd, q := range d.queues {
			o.ObserveInt64(gauge, int64(len(q)),
				metric.WithAttributes(attribute.String("command", cmd)))
		}
		return nil
	}, gauge); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	if d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Total events processed"),
	); err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}
	if d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Total events dropped due to full queue"),
	); err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	return nil
}

// Register adds a handler for the given command. Options compose: a
// Buffered Logged handler logs the enqueue, not the queued execution.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	if reg.queueSize > 0 {
		h = d.enqueue(command, reg, h)
	}
	if reg.logged {
		h = d.timed(command, h)
	}
	d.handlers[command] = h
}

// Dispatch routes an event to its handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Command]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", e.Command)
	}
	return h(e)
}

// HasHandler reports whether a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.handlers[command]
	return ok
}

// QueueLengths reports the current depth of each buffered handler's queue.
// The monitor includes these in the periodic engine status.
func (d *Dispatcher) QueueLengths() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	lengths := make(map[string]int, len(d.queues))
	for cmd, q := range d.queues {
		lengths[cmd] = len(q)
	}
	return lengths
}

func (d *Dispatcher) enqueue(command string, reg registration, h HandlerFunc) HandlerFunc {
	q := make(chan Event, reg.queueSize)

	d.mu.Lock()
	d.queues[command] = q
	d.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("command", command))

	go func() {
		for e := range q {
			h(e)
			d.processed.Add(context.Background(), 1, attrs)
		}
	}()

	if reg.blocking {
		return func(e Event) (any, error) {
			q <- e
			return "queued", nil
		}
	}
	return func(e Event) (any, error) {
		select {
		case q <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, attrs)
			return nil, fmt.Errorf("queue full: %s", command)
		}
	}
}

func (d *Dispatcher) timed(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling event", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("event failed", "command", command,
				"duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("event complete", "command", command,
			"duration", time.Since(start))
		return result, nil
	}
}
