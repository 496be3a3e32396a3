// Command reactbus feeds file system events into an actor bus.
//
// Every watched change becomes a FileEvent that is broadcast to a logging
// actor, a per-operation tally (optionally limited to some extensions) and a
// stop-file actor. Creating a file named .reactbus-stop in a watched
// directory makes that actor fail, which ends dispatch the same way any
// actor error would.
//
// Configuration comes from -config (YAML) and REACTBUS_* variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/codewandler/reactbus/adapters/prometheus"
	"github.com/codewandler/reactbus/core/bus"
	"github.com/codewandler/reactbus/internal/config"
)

func main() {
	configPath := flag.String("config", config.Env("CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("reactbus failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	stopMode, err := cfg.BusStopMode()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, reg, log)
		defer srv.Shutdown(context.Background())
	}

	sys := bus.NewSystem[FileEvent](cfg.Name, cfg.Host, cfg.Port, bus.Options{
		Logger:   log,
		Metrics:  promadapter.NewBusMetrics(reg),
		StopMode: stopMode,
	})

	counts := newTally()
	sys.Spawn("log", logActor{log: log}, nil)
	sys.Spawn("tally", counts, extensionFilter(cfg.Watch.Extensions))
	sys.Spawn("stop-file", stopFileActor{}, nil)

	w, err := newWatcher(cfg.Watch.Paths, log)
	if err != nil {
		_ = sys.Shutdown(ctx)
		return err
	}
	defer w.Close()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go w.run(watchCtx, sys.Bus().Send)

	log.Info("reactbus started", slog.String("system", sys.URI().String()), slog.Any("paths", cfg.Watch.Paths))

	select {
	case <-ctx.Done():
	case <-sys.Bus().Done():
	}
	stopWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = sys.Shutdown(shutdownCtx)
	log.Info("event totals", slog.Any("counts", counts.snapshot()))

	if errors.Is(err, errStopFile) {
		log.Info("stop file seen, exiting")
		return nil
	}
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", slog.Any("error", err))
		}
	}()
	return srv
}
