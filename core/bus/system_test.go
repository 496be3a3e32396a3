package bus

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystem_Spawn(t *testing.T) {
	sys := NewSystem[string]("members", "192.168.0.1", 8888, Options{
		Context: t.Context(),
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.Equal(t, "react://192.168.0.1:8888/members", sys.URI().String())
	require.Equal(t, "members", sys.Bus().Name())

	leader := &recorder[string]{}
	uri := sys.Spawn("leader", leader, func(msg string) bool { return msg == "update" })
	require.Equal(t, "react://192.168.0.1:8888/members/leader", uri.String())

	sys.Bus().Send("ping")
	sys.Bus().Send("update")

	require.NoError(t, sys.Shutdown(t.Context()))
	require.Equal(t, []string{"update"}, leader.messages())
}

func TestSystem_Shutdown_reports_actor_error(t *testing.T) {
	errFatal := errors.New("fatal")
	sys := NewSystem[int]("sys", "localhost", 1, Options{Logger: slog.New(slog.DiscardHandler)})

	uri := sys.Spawn("failing", ActorFunc[int](func(context.Context, int) error { return errFatal }), nil)
	sys.Bus().Send(1)

	require.ErrorIs(t, sys.Shutdown(t.Context()), errFatal)
	require.Equal(t, errFatal, sys.Bus().Join())
	require.Equal(t, "sys/failing", uri.Path)
}

func TestSystem_Shutdown_timeout(t *testing.T) {
	sys := NewSystem[string]("slow", "localhost", 1, Options{Logger: slog.New(slog.DiscardHandler)})

	g := newGate("hold")
	sys.Spawn("gate", g, nil)
	sys.Bus().Send("hold")
	g.wait(t)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err := sys.Shutdown(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorContains(t, err, "react://localhost:1/slow")

	close(g.release)
	require.NoError(t, sys.Bus().Join())
}
