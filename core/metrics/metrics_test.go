package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerFunc(t *testing.T) {
	var got []time.Duration
	tf := TimerFunc(func(d time.Duration) { got = append(got, d) })

	tm := tf.Start()
	time.Sleep(5 * time.Millisecond)
	tm.ObserveDuration()

	require.Len(t, got, 1)
	require.GreaterOrEqual(t, got[0], 5*time.Millisecond)
}

func TestNopTimer(t *testing.T) {
	require.NotPanics(t, func() { NopTimer().ObserveDuration() })
}
