package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codewandler/reactbus/core/bus"
	"github.com/codewandler/reactbus/internal/codec"
	"github.com/codewandler/reactbus/internal/config"
)

// === Config ===

var (
	logLevel   = slog.LevelInfo
	N          = config.EnvInt("N", 200_000)
	producers  = config.EnvInt("PRODUCERS", 8)
	numActors  = config.EnvInt("ACTORS", 4)
	encoded    = config.EnvBool("ENCODED", false)
	codecName  = config.Env("CODEC", "json")
	stopMode   = config.Env("STOP_MODE", bus.StopDrain.String())
	reportEach = time.Second
)

// Tick is the load test message.
type Tick struct {
	Producer int `json:"producer" yaml:"producer"`
	Seq      int `json:"seq" yaml:"seq"`
}

// counter counts deliveries and checks per-producer ordering.
type counter struct {
	n    atomic.Int64
	last []int
}

func newCounter(producers int) *counter {
	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}
	return &counter{last: last}
}

// OnReceive is only ever called from the dispatch worker, so last needs no lock.
func (c *counter) OnReceive(_ context.Context, t Tick) error {
	if t.Seq <= c.last[t.Producer] {
		return fmt.Errorf("producer %d: seq %d after %d", t.Producer, t.Seq, c.last[t.Producer])
	}
	c.last[t.Producer] = t.Seq
	c.n.Add(1)
	return nil
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, log); err != nil {
		log.Error("loadtest failed", slog.Any("error", err))
		os.Exit(1)
	}
}

var errInvalidLoad = errors.New("invalid load settings")

func validate() error {
	if N < 0 {
		return fmt.Errorf("%w: %sN=%d must not be negative", errInvalidLoad, config.EnvPrefix, N)
	}
	if producers <= 0 {
		return fmt.Errorf("%w: %sPRODUCERS=%d must be positive", errInvalidLoad, config.EnvPrefix, producers)
	}
	if numActors <= 0 {
		return fmt.Errorf("%w: %sACTORS=%d must be positive", errInvalidLoad, config.EnvPrefix, numActors)
	}
	return nil
}

func run(ctx context.Context, log *slog.Logger) error {
	if err := validate(); err != nil {
		return err
	}

	cfg := config.Default()
	cfg.StopMode = stopMode
	mode, err := cfg.BusStopMode()
	checkErr(err)

	c, err := codec.ByName(codecName)
	checkErr(err)

	counters := make([]*counter, numActors)
	subs := make([]bus.Subscription[Tick], numActors)
	for i := range counters {
		counters[i] = newCounter(producers)
		subs[i] = bus.Subscription[Tick]{Actor: counters[i]}
	}

	b := bus.New[Tick](bus.Options{
		Name:     "loadtest",
		Context:  ctx,
		Logger:   log,
		StopMode: mode,
		Codec:    c,
	}, subs...)

	log.Info("==================================")
	log.Info("Starting ...",
		slog.Int("messages", N),
		slog.Int("producers", producers),
		slog.Int("actors", numActors),
		slog.Bool("encoded", encoded),
		slog.String("codec", codecName),
	)

	startAt := time.Now()

	reportCtx, stopReport := context.WithCancel(ctx)
	defer stopReport()
	go report(reportCtx, log, b, counters[0], startAt)

	g, gctx := errgroup.WithContext(ctx)
	perProducer := N / producers
	for p := 0; p < producers; p++ {
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				t := Tick{Producer: p, Seq: i}
				if !encoded {
					b.Send(t)
					continue
				}
				data, err := c.Marshal(t)
				if err != nil {
					return err
				}
				if err := b.SendEncoded(data); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.Stop()
		_ = b.Join()
		return err
	}
	sentAt := time.Now()

	b.Stop()
	if err := b.Join(); err != nil {
		return err
	}
	stopReport()

	total := time.Since(startAt)
	delivered := counters[0].n.Load()
	log.Info("==================================")
	log.Info("Done",
		slog.Int64("delivered", delivered),
		slog.Duration("send_time", sentAt.Sub(startAt)),
		slog.Duration("total_time", total),
		slog.Float64("msgs_per_sec", float64(delivered)/total.Seconds()),
	)

	expected := int64(perProducer * producers)
	for i, cnt := range counters {
		if got := cnt.n.Load(); got != expected {
			return fmt.Errorf("actor %d received %d of %d messages", i, got, expected)
		}
	}
	return nil
}

func report(ctx context.Context, log *slog.Logger, b *bus.Bus[Tick], c *counter, startAt time.Time) {
	t := time.NewTicker(reportEach)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			log.Info("progress",
				slog.Int64("delivered", c.n.Load()),
				slog.Int("queued", b.Len()),
				slog.Duration("elapsed", time.Since(startAt)),
			)
		}
	}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
