package bus

import (
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type registration[M any] struct {
	id    string
	name  string // log label: actor uri when known, id otherwise
	actor Actor[M]
	pred  Predicate[M]
	gen   uint64 // registry generation this registration was added at
}

// accept reports whether msg should be delivered: the actor's own Accept
// (if any) and the predicate (if any) must both agree.
func (r *registration[M]) accept(msg M) bool {
	if a, ok := r.actor.(Acceptor[M]); ok && !a.Accept(msg) {
		return false
	}
	return r.pred == nil || r.pred(msg)
}

// seenBy reports whether a message stamped with generation gen was sent
// after this registration became visible.
func (r *registration[M]) seenBy(gen uint64) bool { return r.gen <= gen }

// registry is an append-ordered, copy-on-write list of registrations.
// Snapshots are immutable, so iteration never holds the lock.
type registry[M any] struct {
	mu   sync.Mutex
	regs []*registration[M]
	gen  atomic.Uint64
}

func newRegistry[M any]() *registry[M] {
	return &registry[M]{}
}

func (r *registry[M]) add(a Actor[M], pred Predicate[M], name string) *registration[M] {
	reg := &registration[M]{
		id:    gonanoid.Must(),
		actor: a,
		pred:  pred,
	}
	reg.name = name
	if reg.name == "" {
		if c, ok := a.(Contextual); ok && !c.ActorContext().URI.IsZero() {
			reg.name = c.ActorContext().URI.String()
		} else {
			reg.name = reg.id
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reg.gen = r.gen.Add(1)
	next := make([]*registration[M], len(r.regs), len(r.regs)+1)
	copy(next, r.regs)
	r.regs = append(next, reg)
	return reg
}

func (r *registry[M]) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regs {
		if reg.id != id {
			continue
		}
		next := make([]*registration[M], 0, len(r.regs)-1)
		next = append(next, r.regs[:i]...)
		r.regs = append(next, r.regs[i+1:]...)
		return true
	}
	return false
}

// snapshot returns the current registrations in registration order. The
// returned slice must not be modified.
func (r *registry[M]) snapshot() []*registration[M] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs
}

func (r *registry[M]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// generation is the number of registrations ever added.
func (r *registry[M]) generation() uint64 { return r.gen.Load() }
