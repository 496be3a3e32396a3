package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type evenActor struct{ ActorFunc[int] }

func (evenActor) Accept(n int) bool { return n%2 == 0 }

type addressedActor struct {
	ActorFunc[int]
	uri ActorURI
}

func (a addressedActor) ActorContext() ActorContext { return ActorContext{URI: a.uri} }

func nopActor() ActorFunc[int] {
	return func(context.Context, int) error { return nil }
}

func TestRegistration_accept(t *testing.T) {
	positive := func(n int) bool { return n > 0 }

	tests := []struct {
		name  string
		actor Actor[int]
		pred  Predicate[int]
		msg   int
		want  bool
	}{
		{"no filter", nopActor(), nil, -3, true},
		{"predicate accepts", nopActor(), positive, 3, true},
		{"predicate rejects", nopActor(), positive, -3, false},
		{"acceptor accepts", evenActor{nopActor()}, nil, 4, true},
		{"acceptor rejects", evenActor{nopActor()}, nil, 3, false},
		{"both accept", evenActor{nopActor()}, positive, 4, true},
		{"predicate vetoes acceptor", evenActor{nopActor()}, positive, -4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry[int]()
			reg := r.add(tt.actor, tt.pred, "")
			require.Equal(t, tt.want, reg.accept(tt.msg))
		})
	}
}

func TestRegistry_order_and_generation(t *testing.T) {
	r := newRegistry[int]()
	require.Equal(t, uint64(0), r.generation())

	a := r.add(nopActor(), nil, "a")
	b := r.add(nopActor(), nil, "b")
	c := r.add(nopActor(), nil, "c")

	require.Equal(t, uint64(3), r.generation())
	require.Equal(t, 3, r.len())

	snap := r.snapshot()
	require.Equal(t, []string{"a", "b", "c"}, names(snap))

	require.True(t, a.seenBy(1))
	require.False(t, b.seenBy(1))
	require.True(t, c.seenBy(3))
}

func TestRegistry_snapshot_is_stable(t *testing.T) {
	r := newRegistry[int]()
	a := r.add(nopActor(), nil, "a")
	r.add(nopActor(), nil, "b")

	snap := r.snapshot()

	r.add(nopActor(), nil, "c")
	require.True(t, r.remove(a.id))

	require.Equal(t, []string{"a", "b"}, names(snap))
	require.Equal(t, []string{"b", "c"}, names(r.snapshot()))
}

func TestRegistry_remove(t *testing.T) {
	r := newRegistry[int]()
	a := r.add(nopActor(), nil, "a")

	require.False(t, r.remove("missing"))
	require.True(t, r.remove(a.id))
	require.False(t, r.remove(a.id))
	require.Equal(t, 0, r.len())

	// generation never goes backwards
	require.Equal(t, uint64(1), r.generation())
}

func TestRegistry_names(t *testing.T) {
	r := newRegistry[int]()

	anon := r.add(nopActor(), nil, "")
	require.NotEmpty(t, anon.id)
	require.Equal(t, anon.id, anon.name)

	uri := ActorURI{Host: "localhost", Port: 7000, Path: "sys/worker"}
	addressed := r.add(addressedActor{nopActor(), uri}, nil, "")
	require.Equal(t, "react://localhost:7000/sys/worker", addressed.name)

	explicit := r.add(addressedActor{nopActor(), uri}, nil, "override")
	require.Equal(t, "override", explicit.name)
}

func names[M any](regs []*registration[M]) []string {
	out := make([]string, 0, len(regs))
	for _, r := range regs {
		out = append(out, r.name)
	}
	return out
}
