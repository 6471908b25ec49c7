package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/username/holiday-assistant/internal/metrics"
	"go.uber.org/zap"
)

// Runner is a blocking service stopped by cancelling its context
type Runner interface {
	Run(ctx context.Context) error
}

// Reloader refreshes the holiday calendar and reports its size
type Reloader interface {
	Reload(ctx context.Context) (int, error)
}

// Daemon runs the HTTP server and reloads the calendar on a cron schedule
type Daemon struct {
	server     Runner
	reloader   Reloader // nil disables reloads
	reloadSpec string   // standard 5-field cron expression; empty disables the schedule
	metrics    *metrics.Metrics
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc

	mu            sync.Mutex // protects the fields below
	reloadRunning bool
	lastReload    time.Time
	lastCount     int
	lastErr       error
}

// NewDaemon creates a new daemon instance
func NewDaemon(server Runner, reloader Reloader, reloadSpec string, m *metrics.Metrics, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		server:     server,
		reloader:   reloader,
		reloadSpec: reloadSpec,
		metrics:    m,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start runs the daemon until SIGINT/SIGTERM or Stop
func (d *Daemon) Start() error {
	defer d.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	return d.Run(d.ctx)
}

// Run runs the daemon until ctx is cancelled or the server fails
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.reloader != nil && d.reloadSpec != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(d.reloadSpec, func() { d.runReload(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule calendar reload: %w", err)
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
		}()

		d.logger.Info("Calendar reload scheduled",
			zap.String("schedule", d.reloadSpec),
			zap.Time("next_run", scheduler.Entries()[0].Next))
	}

	d.logger.Info("Daemon started")
	err := d.server.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}

	d.logger.Info("Daemon stopped")
	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// ReloadNow triggers an immediate calendar reload
func (d *Daemon) ReloadNow(ctx context.Context) error {
	return d.runReload(ctx)
}

// runReload reloads the calendar; overlapping runs are skipped
func (d *Daemon) runReload(ctx context.Context) error {
	if d.reloader == nil {
		return nil
	}

	d.mu.Lock()
	if d.reloadRunning {
		d.mu.Unlock()
		d.logger.Warn("Reload already running, skipping concurrent execution")
		return fmt.Errorf("reload already in progress")
	}
	d.reloadRunning = true
	d.mu.Unlock()

	start := time.Now()
	count, err := d.reloader.Reload(ctx)

	d.mu.Lock()
	d.reloadRunning = false
	d.lastReload = start
	d.lastErr = err
	if err == nil {
		d.lastCount = count
	}
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.ObserveReload(err, count)
	}

	if err != nil {
		d.logger.Error("Calendar reload failed", zap.Error(err))
		return err
	}

	d.logger.Info("Calendar reloaded",
		zap.Int("holidays", count),
		zap.Duration("took", time.Since(start)))
	return nil
}

// GetStatus returns daemon status
func (d *Daemon) GetStatus() map[string]interface{} {
	d.mu.Lock()
	defer d.mu.Unlock()

	status := map[string]interface{}{
		"reload_schedule": d.reloadSpec,
		"reload_running":  d.reloadRunning,
		"holidays":        d.lastCount,
	}
	if !d.lastReload.IsZero() {
		status["last_reload"] = d.lastReload.Format(time.RFC3339)
	}
	if d.lastErr != nil {
		status["last_error"] = d.lastErr.Error()
	}
	return status
}
