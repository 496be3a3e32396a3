package bus

import "github.com/codewandler/reactbus/core/metrics"

// Metrics defines the instrumentation hooks of a Bus. Every method receives
// the bus name. Implementations must be safe for concurrent use.
type Metrics interface {
	// Queue
	MessageSent(bus string)
	QueueDepth(bus string, depth int)

	// Dispatch
	DispatchDuration(bus string) metrics.Timer
	MessageDelivered(bus string, success bool)
	MessageFiltered(bus string)
	ActorPanic(bus string)

	// Registry
	Subscriptions(bus string, count int)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) MessageSent(string)                    {}
func (nopMetrics) QueueDepth(string, int)                {}
func (nopMetrics) DispatchDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageDelivered(string, bool)         {}
func (nopMetrics) MessageFiltered(string)                {}
func (nopMetrics) ActorPanic(string)                     {}
func (nopMetrics) Subscriptions(string, int)             {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
