package bus

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/reactbus/internal/codec"
)

type envelope[M any] struct {
	msg M
	gen uint64 // registry generation at send time
}

// Bus owns a message queue, an actor registry and the single worker that
// dispatches queued messages to matching actors.
type Bus[M any] struct {
	name    string
	ctx     context.Context
	log     *slog.Logger
	metrics Metrics
	codec   Codec
	mode    StopMode

	queue *queue[envelope[M]]
	reg   *registry[M]

	stopOnce sync.Once
	stopped  atomic.Bool
	stopAt   atomic.Uint64 // last sequence number sent before Stop
	stop     chan struct{}

	done chan struct{}
	err  error // terminal result, written by the worker before done is closed
}

// New creates a Bus seeded with initial and starts its worker. It returns
// immediately.
func New[M any](opts Options, initial ...Subscription[M]) *Bus[M] {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("bus-%s", gonanoid.Must(6))
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}
	if opts.Codec == nil {
		opts.Codec = codec.JSONCodec{}
	}

	b := &Bus[M]{
		name:    opts.Name,
		ctx:     opts.Context,
		log:     opts.Logger.With(slog.String("bus", opts.Name)),
		metrics: opts.Metrics,
		codec:   opts.Codec,
		mode:    opts.StopMode,
		queue:   newQueue[envelope[M]](),
		reg:     newRegistry[M](),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	for _, s := range initial {
		b.reg.add(s.Actor, s.Predicate, "")
	}
	b.metrics.Subscriptions(b.name, b.reg.len())

	b.log.Debug("starting bus", slog.Int("actors", len(initial)), slog.String("stop_mode", b.mode.String()))

	go b.run()
	return b
}

// Name returns the bus name.
func (b *Bus[M]) Name() string { return b.name }

// Send enqueues msg for delivery. It never blocks and never fails. Once the
// worker has exited, sent messages are never delivered.
func (b *Bus[M]) Send(msg M) {
	b.queue.push(envelope[M]{msg: msg, gen: b.reg.generation()})
	b.metrics.MessageSent(b.name)
	b.metrics.QueueDepth(b.name, b.queue.len())
}

// SendEncoded decodes data with the configured codec and sends the result.
func (b *Bus[M]) SendEncoded(data []byte) error {
	var msg M
	if err := b.codec.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	b.Send(msg)
	return nil
}

// Subscribe registers an actor and returns its registration id. The actor
// receives messages sent after Subscribe returns. A nil predicate accepts
// every message.
func (b *Bus[M]) Subscribe(a Actor[M], pred Predicate[M]) string {
	return b.subscribe(a, pred, "")
}

func (b *Bus[M]) subscribe(a Actor[M], pred Predicate[M], name string) string {
	reg := b.reg.add(a, pred, name)
	b.metrics.Subscriptions(b.name, b.reg.len())
	b.log.Debug("actor subscribed", slog.String("actor", reg.name), slog.String("id", reg.id))
	return reg.id
}

// Unsubscribe removes a registration. A message already being dispatched
// may still reach the actor.
func (b *Bus[M]) Unsubscribe(id string) bool {
	ok := b.reg.remove(id)
	if ok {
		b.metrics.Subscriptions(b.name, b.reg.len())
		b.log.Debug("actor unsubscribed", slog.String("id", id))
	}
	return ok
}

// Len returns the number of messages waiting in the queue.
func (b *Bus[M]) Len() int { return b.queue.len() }

// Stop requests shutdown. It is idempotent and does not block.
func (b *Bus[M]) Stop() {
	b.stopOnce.Do(func() {
		b.stopAt.Store(b.queue.sent())
		b.stopped.Store(true)
		close(b.stop)
		b.log.Debug("stop requested")
	})
}

// Done is closed when the worker exits.
func (b *Bus[M]) Done() <-chan struct{} { return b.done }

// Join blocks until the worker exits and returns its terminal result: nil
// after a regular stop, or the first error raised by an actor. Join may be
// called any number of times.
func (b *Bus[M]) Join() error {
	<-b.done
	return b.err
}

// ---- internals ----

func (b *Bus[M]) run() {
	defer close(b.done)

	b.err = b.loop()
	if b.err != nil {
		b.log.Error("bus terminated", slog.Any("error", b.err), slog.Int("undelivered", b.queue.len()))
		return
	}
	b.log.Debug("bus stopped", slog.Int("undelivered", b.queue.len()))
}

func (b *Bus[M]) loop() error {
	for {
		// cancellation counts as Stop from the cycle it is first seen in
		if b.ctx.Err() != nil {
			b.Stop()
		}
		if b.mode == StopImmediate && b.stopped.Load() {
			return nil
		}

		env, seq, ok := b.queue.tryPop()
		if !ok {
			if b.stopped.Load() {
				return nil
			}
			select {
			case <-b.queue.signal():
			case <-b.stop:
			case <-b.ctx.Done():
				b.Stop()
			}
			continue
		}

		b.metrics.QueueDepth(b.name, b.queue.len())

		// sent after Stop
		if b.mode == StopDrain && b.stopped.Load() && seq > b.stopAt.Load() {
			return nil
		}

		if err := b.dispatch(env); err != nil {
			return err
		}
	}
}

// dispatch visits the registry snapshot in order and stops at the first
// failing actor. The failure itself is logged once, by run.
func (b *Bus[M]) dispatch(env envelope[M]) error {
	defer b.metrics.DispatchDuration(b.name).ObserveDuration()

	for _, reg := range b.reg.snapshot() {
		if !reg.seenBy(env.gen) {
			continue
		}
		delivered, err := b.deliver(reg, env.msg)
		if err != nil {
			// a panicking predicate never reached the actor
			if delivered {
				b.metrics.MessageDelivered(b.name, false)
			}
			b.log.Debug("actor failed", slog.String("actor", reg.name))
			return err
		}
		if !delivered {
			b.metrics.MessageFiltered(b.name)
			continue
		}
		b.metrics.MessageDelivered(b.name, true)
	}
	return nil
}

func (b *Bus[M]) deliver(reg *registration[M], msg M) (delivered bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.ActorPanic(b.name)
			err = &PanicError{Actor: reg.name, Recovered: r, Stack: debug.Stack()}
		}
	}()

	if !reg.accept(msg) {
		return false, nil
	}
	delivered = true
	return delivered, reg.actor.OnReceive(b.ctx, msg)
}
