// Package app wires configuration, logging, storage, the delivery sink, the
// local gateway, the reminder engine, and the background daemon together.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SHIN-ko/chuihyang-sub000/internal/clock"
	"github.com/SHIN-ko/chuihyang-sub000/internal/config"
	"github.com/SHIN-ko/chuihyang-sub000/internal/daemon"
	"github.com/SHIN-ko/chuihyang-sub000/internal/eventbus"
	local "github.com/SHIN-ko/chuihyang-sub000/internal/gateway/local"
	"github.com/SHIN-ko/chuihyang-sub000/internal/notify"
	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
	"github.com/SHIN-ko/chuihyang-sub000/internal/reminder"
	"github.com/SHIN-ko/chuihyang-sub000/internal/storage"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	bus   eventbus.Bus
	store storage.Store
	sink  notify.Sink

	loc *time.Location
	clk clock.Clock

	gw     *local.Gateway
	engine *reminder.Service
	diag   *reminder.Diagnostics
	dmn    *daemon.Daemon

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	cfgCh    chan *config.Config
	busUnsub func()
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(logs.Logger().With(logx.String("comp", "config")))

	loc := time.Local
	if tz := strings.TrimSpace(cfg.Daemon.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("daemon.timezone: %w", err)
		}
		loc = l
	}
	clk := clock.System(loc)
	bus := eventbus.New()

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, logs.Logger().With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	sink, err := buildSink(cfg, logs.Logger())
	if err != nil {
		return nil, err
	}

	minLead, err := config.ParseDurationOrDefault("delivery.min_lead", cfg.Delivery.MinLead, reminder.MinLead)
	if err != nil {
		return nil, err
	}
	gw := local.New(local.Config{
		MinLead:    minLead,
		RatePerSec: cfg.Delivery.RatePerSec,
	}, sink, store, bus, clk, logs.Logger().With(logx.String("comp", "gateway")))

	planner := reminder.NewPlanner(loc)
	engine := reminder.NewService(planner, gw, reminder.NewCatalogResolver(), clk,
		logs.Logger().With(logx.String("comp", "engine")))
	diag := reminder.NewDiagnostics(gw, clk)

	a := &App{
		cfgm:   cfgm,
		log:    log,
		logs:   logs,
		bus:    bus,
		store:  store,
		sink:   sink,
		loc:    loc,
		clk:    clk,
		gw:     gw,
		engine: engine,
		diag:   diag,
	}

	diagEvery, err := config.ParseDurationField("daemon.diagnostics_every", cfg.Daemon.DiagnosticsEvery)
	if err != nil {
		return nil, err
	}
	a.dmn = daemon.New(daemon.Config{
		Timezone:         cfg.Daemon.Timezone,
		ResyncAt:         cfg.Daemon.ResyncAt,
		DiagnosticsEvery: diagEvery,
	}, logs.Logger().With(logx.String("comp", "daemon")), a.Resync, a.runDiagnostics)

	return a, nil
}

func buildSink(cfg *config.Config, log logx.Logger) (notify.Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Delivery.Channel)) {
	case "telegram":
		return notify.NewTelegram(notify.TelegramConfig{
			Token:  cfg.Delivery.Telegram.Token,
			ChatID: cfg.Delivery.Telegram.ChatID,
		}, log.With(logx.String("comp", "telegram")))
	case "", "console":
		return notify.NewConsole(log.With(logx.String("comp", "delivery"))), nil
	default:
		return nil, fmt.Errorf("unknown delivery channel %q", cfg.Delivery.Channel)
	}
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	if err := a.gw.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("gateway start: %w", err)
	}

	// Initial full schedule pass. Failures are reported through logs and
	// diagnostics, never fatal to startup.
	if err := a.Resync(runCtx); err != nil {
		a.log.Warn("initial reschedule incomplete", logx.Err(err))
	}

	if err := a.dmn.Start(runCtx); err != nil {
		cancel()
		return fmt.Errorf("daemon start: %w", err)
	}

	// Config hot reload: logging changes apply live; everything else takes
	// effect on restart.
	a.cfgCh = a.cfgm.Subscribe(4)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		_ = a.cfgm.Watch(runCtx)
	}()
	go func() {
		defer a.wg.Done()
		a.configLoop(runCtx)
	}()

	// Delivery recorder: persist delivery outcomes from the bus.
	busCh, unsub := a.bus.Subscribe(64)
	a.mu.Lock()
	a.busUnsub = unsub
	a.mu.Unlock()
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.recordDeliveries(runCtx, busCh)
	}()

	a.log.Info("app started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	unsub := a.busUnsub
	a.busUnsub = nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	a.dmn.Stop(ctx)
	_ = a.gw.Stop(ctx)
	if unsub != nil {
		unsub()
	}
	if a.cfgCh != nil {
		a.cfgm.Unsubscribe(a.cfgCh)
		a.cfgCh = nil
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logs.Close()
	a.log.Info("app stopped")
	return nil
}

// Resync is the explicit recompute action: it reloads the persisted settings
// snapshot and reschedules every non-completed project against it.
func (a *App) Resync(ctx context.Context) error {
	settings, err := reminder.LoadSettingsOr(ctx, a.settingsStore(), a.defaultSettings())
	if err != nil {
		return err
	}
	projects, err := a.listProjects(ctx)
	if err != nil {
		return err
	}
	return a.engine.RescheduleAll(ctx, projects, settings)
}

// ResyncOnce runs a single reschedule pass without the background daemon
// (the -resync CLI mode). Registrations are persisted; the next daemon run
// re-arms their timers.
func (a *App) ResyncOnce(ctx context.Context) error {
	if err := a.gw.Start(ctx); err != nil {
		return err
	}
	defer a.closeOnce(ctx)
	return a.Resync(ctx)
}

// DiagnoseOnce starts the gateway (restoring persisted registrations so the
// report reflects real state), runs the report, and shuts down again.
func (a *App) DiagnoseOnce(ctx context.Context) (reminder.Report, error) {
	if err := a.gw.Start(ctx); err != nil {
		return reminder.Report{}, err
	}
	defer a.closeOnce(ctx)
	return a.Diagnose(ctx)
}

func (a *App) closeOnce(ctx context.Context) {
	_ = a.gw.Stop(ctx)
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logs.Close()
}

// Diagnose runs the read-only health report.
func (a *App) Diagnose(ctx context.Context) (reminder.Report, error) {
	projects, err := a.listProjects(ctx)
	if err != nil {
		return reminder.Report{}, err
	}
	return a.diag.Run(ctx, projects), nil
}

func (a *App) runDiagnostics(ctx context.Context) reminder.Report {
	rep, err := a.Diagnose(ctx)
	if err != nil {
		rep.Results = append(rep.Results, reminder.DiagResult{
			Category: "storage",
			Status:   reminder.DiagError,
			Message:  "could not load projects",
			Details:  err.Error(),
		})
		rep.Summary.Errors++
	}
	return rep
}

func (a *App) listProjects(ctx context.Context) ([]project.Project, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.ListProjects(ctx)
}

// defaultSettings maps the config file's notification defaults, used until
// the first settings blob is persisted.
func (a *App) defaultSettings() reminder.Settings {
	cfg := a.cfgm.Get()
	if cfg == nil || cfg.Notifications == nil {
		return reminder.DefaultSettings()
	}
	n := cfg.Notifications
	return reminder.Settings{
		Enabled:             n.Enabled,
		CompletionReminders: n.CompletionReminders,
		ProgressChecks:      n.ProgressChecks,
		SoundEnabled:        n.SoundEnabled,
		QuietHours: reminder.QuietHours{
			Enabled:   n.QuietHours.Enabled,
			StartTime: n.QuietHours.StartTime,
			EndTime:   n.QuietHours.EndTime,
		},
	}
}

// settingsStore adapts the possibly-nil store to the engine's narrow
// settings interface without producing a typed non-nil interface value.
func (a *App) settingsStore() reminder.SettingsStore {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *App) configLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-a.cfgCh:
			if !ok || cfg == nil {
				return
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			a.gw.SetRate(cfg.Delivery.RatePerSec)
			a.log.Info("config reloaded (logging and delivery rate applied; other sections need restart)")
		}
	}
}

func (a *App) recordDeliveries(ctx context.Context, ch <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type != eventbus.TypeReminderDelivered && ev.Type != eventbus.TypeReminderDeliveryFailed {
				continue
			}
			de, ok := ev.Data.(eventbus.DeliveryEvent)
			if !ok || a.store == nil {
				continue
			}
			err := a.store.AppendDelivery(ctx, storage.DeliveryRecord{
				At:         de.At,
				Identifier: de.Identifier,
				Title:      de.Title,
				Error:      de.Error,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("delivery record append failed",
					logx.String("identifier", de.Identifier),
					logx.Err(err))
			}
		}
	}
}
