// Package daemon runs the background sweep jobs: a daily reschedule of all
// non-completed projects and a periodic diagnostics report.
//
// Settings changes on their own never recompute existing reminders; the daily
// resync (or an explicit operator action) is where recomputation happens.
package daemon

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SHIN-ko/chuihyang-sub000/internal/reminder"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

type Config struct {
	Timezone         string        // IANA TZ; empty means local
	ResyncAt         string        // "HH:mm", default "04:00"
	DiagnosticsEvery time.Duration // 0 disables the diagnostics job
	JobTimeout       time.Duration // per-job timeout, default 2m
}

// Daemon owns the cron instance and delegates the actual work to the
// injected callbacks so it stays decoupled from storage and engine wiring.
type Daemon struct {
	cfg Config
	log logx.Logger

	resync   func(ctx context.Context) error
	diagnose func(ctx context.Context) reminder.Report

	mu sync.Mutex
	c  *cron.Cron
}

func New(cfg Config, log logx.Logger, resync func(ctx context.Context) error, diagnose func(ctx context.Context) reminder.Report) *Daemon {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	return &Daemon{cfg: cfg, log: log, resync: resync, diagnose: diagnose}
}

func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.c != nil {
		return nil
	}

	loc := d.loadLocation()
	c := cron.New(cron.WithLocation(loc))

	resyncAt := strings.TrimSpace(d.cfg.ResyncAt)
	if resyncAt == "" {
		resyncAt = "04:00"
	}
	h, m, err := parseHHMM(resyncAt)
	if err != nil {
		return fmt.Errorf("resync_at: %w", err)
	}
	spec := fmt.Sprintf("%d %d * * *", m, h)
	if _, err := c.AddFunc(spec, func() { d.runJob(ctx, "resync", d.runResync) }); err != nil {
		return err
	}

	if d.cfg.DiagnosticsEvery > 0 && d.diagnose != nil {
		diagSpec := fmt.Sprintf("@every %s", d.cfg.DiagnosticsEvery.String())
		if _, err := c.AddFunc(diagSpec, func() { d.runJob(ctx, "diagnostics", d.runDiagnostics) }); err != nil {
			return err
		}
	}

	c.Start()
	d.c = c
	d.log.Info("daemon started",
		logx.String("tz", loc.String()),
		logx.String("resync_at", resyncAt),
		logx.Duration("diagnostics_every", d.cfg.DiagnosticsEvery))
	return nil
}

func (d *Daemon) Stop(ctx context.Context) {
	d.mu.Lock()
	c := d.c
	d.c = nil
	d.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
		d.log.Info("daemon stopped")
	case <-ctx.Done():
		// running jobs finish in background
	}
}

func (d *Daemon) runJob(parent context.Context, name string, job func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in daemon job",
				logx.String("job", name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	ctx, cancel := context.WithTimeout(parent, d.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	if err != nil {
		d.log.Warn("daemon job failed",
			logx.String("job", name),
			logx.Duration("took", time.Since(start)),
			logx.Err(err))
		return
	}
	d.log.Debug("daemon job finished",
		logx.String("job", name),
		logx.Duration("took", time.Since(start)))
}

func (d *Daemon) runResync(ctx context.Context) error {
	if d.resync == nil {
		return nil
	}
	return d.resync(ctx)
}

func (d *Daemon) runDiagnostics(ctx context.Context) error {
	rep := d.diagnose(ctx)
	for _, res := range rep.Results {
		switch res.Status {
		case reminder.DiagError:
			d.log.Error("diagnostics",
				logx.String("category", res.Category),
				logx.String("message", res.Message),
				logx.String("action", res.Action))
		case reminder.DiagWarning:
			d.log.Warn("diagnostics",
				logx.String("category", res.Category),
				logx.String("message", res.Message),
				logx.String("action", res.Action))
		}
	}
	d.log.Info("diagnostics pass finished",
		logx.Int("ok", rep.Summary.Success),
		logx.Int("warnings", rep.Summary.Warnings),
		logx.Int("errors", rep.Summary.Errors))
	return nil
}

func (d *Daemon) loadLocation() *time.Location {
	tz := strings.TrimSpace(d.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		d.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func parseHHMM(s string) (hour, min int, err error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid HH:mm value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("HH:mm value %q out of range", s)
	}
	return h, m, nil
}
