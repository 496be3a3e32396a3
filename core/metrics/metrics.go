// Package metrics provides backend-neutral metric ports so the bus can be
// instrumented (Prometheus, StatsD, ...) without importing a backend.
package metrics

import "time"

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}

// TimerFunc adapts a plain function receiving the elapsed time to a Timer
// factory, which is handy for tests and ad-hoc sinks:
//
//	t := metrics.TimerFunc(func(d time.Duration) { total += d })
//	defer t.Start().ObserveDuration()
type TimerFunc func(elapsed time.Duration)

// Start begins a measurement.
func (f TimerFunc) Start() Timer {
	return &funcTimer{f: f, start: time.Now()}
}

type funcTimer struct {
	f     TimerFunc
	start time.Time
}

func (t *funcTimer) ObserveDuration() { t.f(time.Since(t.start)) }
