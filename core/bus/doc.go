// Package bus provides an in-process, asynchronous actor dispatch engine.
//
// A [Bus] accepts messages from any number of producer goroutines, keeps an
// ordered registry of actors (each with an optional acceptance predicate) and
// delivers queued messages from a single background worker.
//
// # Creating a Bus
//
//	b := bus.New[string](bus.Options{Name: "events"},
//	    bus.Subscription[string]{Actor: auditActor},
//	)
//
//	b.Subscribe(bus.ActorFunc[string](func(ctx context.Context, msg string) error {
//	    fmt.Println("got", msg)
//	    return nil
//	}), func(msg string) bool { return strings.HasPrefix(msg, "user.") })
//
//	b.Send("user.created")
//
// # Delivery
//
// Messages are delivered in the order they were enqueued. For every message
// the registry is visited in registration order, one actor at a time. An
// actor only sees messages sent after it was subscribed.
//
// # Failure
//
// Dispatch is fail-fast: the first error returned (or panic raised) by an
// actor terminates the worker. No further actor or message is processed and
// the error is reported by [Bus.Join]:
//
//	b.Stop()
//	if err := b.Join(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifecycle
//
//	b.Stop()   // request shutdown, never blocks, idempotent
//	b.Join()   // wait for the worker and return its terminal result
//	<-b.Done() // closed when the worker exits
package bus
