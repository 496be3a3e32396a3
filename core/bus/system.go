package bus

import (
	"context"
	"fmt"
	"log/slog"
)

// System is a named Bus that hands out addresses to the actors it spawns.
// Addresses are informational; delivery still goes through the Bus.
type System[M any] struct {
	uri ActorURI
	bus *Bus[M]
}

// NewSystem starts a System named name. Spawned actors are addressed as
// react://host:port/name/<path>.
func NewSystem[M any](name, host string, port int, opts Options) *System[M] {
	opts.Name = name
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	uri := ActorURI{Host: host, Port: port, Path: name}
	opts.Logger = opts.Logger.With(slog.String("system", uri.String()))

	return &System[M]{
		uri: uri,
		bus: New[M](opts),
	}
}

// URI returns the address of the system itself.
func (s *System[M]) URI() ActorURI { return s.uri }

// Bus returns the underlying Bus.
func (s *System[M]) Bus() *Bus[M] { return s.bus }

// Spawn subscribes a and returns the address it was registered under.
func (s *System[M]) Spawn(path string, a Actor[M], pred Predicate[M]) ActorURI {
	uri := s.uri.Join(path)
	s.bus.subscribe(a, pred, uri.String())
	return uri
}

// Shutdown stops the bus and waits for it to exit or ctx to end. It returns
// the bus's terminal error, if any.
func (s *System[M]) Shutdown(ctx context.Context) error {
	s.bus.Stop()
	select {
	case <-s.bus.Done():
		return s.bus.Join()
	case <-ctx.Done():
		return fmt.Errorf("shutdown %s: %w", s.uri, ctx.Err())
	}
}
