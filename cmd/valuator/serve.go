package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/trogers1052/portfolio-valuation/internal/api"
	"github.com/trogers1052/portfolio-valuation/internal/kafka"
	"github.com/trogers1052/portfolio-valuation/internal/scheduler"
)

// serveCmd runs the HTTP API, the revaluation schedule and the optional
// Kafka trigger consumer until interrupted.
type serveCmd struct {
	runNow bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve valuations over HTTP and revalue on a schedule" }
func (*serveCmd) Usage() string {
	return `valuator serve [-now]

  Starts the HTTP API and revalues the wallet on REVALUATION_SCHEDULE.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runNow, "now", false, "Revalue immediately on startup")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	log := a.log

	a.restore(ctx)

	jobTimeout := 30 * time.Minute
	sched := scheduler.New(log)
	if err := sched.AddJob(a.cfg.Server.Schedule, scheduler.NewRevaluationJob(a.runner, jobTimeout)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid REVALUATION_SCHEDULE: %v\n", err)
		return subcommands.ExitUsageError
	}
	sched.Start()
	defer sched.Stop()

	if a.cfg.Kafka.TriggerTopic != "" {
		consumer := kafka.NewTriggerConsumer(a.cfg.Kafka.Brokers, a.cfg.Kafka.TriggerTopic, a.cfg.Kafka.GroupID, a.runner, log)
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Trigger consumer stopped")
			}
		}()
	}

	if c.runNow {
		go func() {
			if err := a.runner.Revalue(ctx, "startup"); err != nil {
				log.Error().Err(err).Msg("Startup revaluation failed")
			}
		}()
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Address(),
		Handler:           api.SetupRoutes(api.NewHandler(a.runner, log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return subcommands.ExitFailure
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown")
	}
	return subcommands.ExitSuccess
}
