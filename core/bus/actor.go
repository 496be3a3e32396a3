package bus

import "context"

type (
	// Actor receives messages delivered by a Bus.
	Actor[M any] interface {
		OnReceive(ctx context.Context, msg M) error
	}

	// Acceptor is implemented by actors that filter messages themselves.
	// Actors that don't implement it accept everything.
	Acceptor[M any] interface {
		Accept(msg M) bool
	}

	// Contextual is implemented by actors that carry their own address.
	Contextual interface {
		ActorContext() ActorContext
	}

	// ActorContext describes where an actor lives. It is informational only.
	ActorContext struct {
		URI ActorURI
	}

	// Predicate decides whether a message is delivered to a registration.
	Predicate[M any] func(msg M) bool

	// Subscription pairs an actor with an optional predicate. It is used to
	// seed a Bus at construction time.
	Subscription[M any] struct {
		Actor     Actor[M]
		Predicate Predicate[M]
	}
)

// ActorFunc adapts a function to the Actor interface.
type ActorFunc[M any] func(ctx context.Context, msg M) error

func (f ActorFunc[M]) OnReceive(ctx context.Context, msg M) error { return f(ctx, msg) }

var _ Actor[any] = ActorFunc[any](nil)
