package local

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/SHIN-ko/chuihyang-sub000/internal/clock"
	"github.com/SHIN-ko/chuihyang-sub000/internal/eventbus"
	"github.com/SHIN-ko/chuihyang-sub000/internal/notify"
	"github.com/SHIN-ko/chuihyang-sub000/internal/reminder"
	"github.com/SHIN-ko/chuihyang-sub000/internal/storage"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

var (
	// ErrPastTrigger rejects registrations inside the minimum lead window.
	ErrPastTrigger = errors.New("trigger instant is inside the minimum lead window")
	ErrNotStarted  = errors.New("gateway not started")
)

// Config controls the local gateway.
type Config struct {
	// MinLead is the enforced minimum scheduling lead time (default 5m).
	MinLead time.Duration
	// RatePerSec bounds delivery sends (default 1).
	RatePerSec int
}

type Gateway struct {
	cfg   Config
	log   logx.Logger
	clk   clock.Clock
	sink  notify.Sink
	store storage.Store // nil means in-memory only
	bus   eventbus.Bus

	limiter *rate.Limiter

	mu      sync.Mutex
	started bool
	regs    map[string]reminder.Registration
	timers  map[string]*time.Timer
	// ver guards against stale timer callbacks after an upsert or cancel,
	// in place of trying to reliably stop a racing timer.
	ver map[string]uint64
}

func New(cfg Config, sink notify.Sink, store storage.Store, bus eventbus.Bus, clk clock.Clock, log logx.Logger) *Gateway {
	if cfg.MinLead <= 0 {
		cfg.MinLead = reminder.MinLead
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Gateway{
		cfg:     cfg,
		log:     log,
		clk:     clk,
		sink:    sink,
		store:   store,
		bus:     bus,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
		regs:    map[string]reminder.Registration{},
		timers:  map[string]*time.Timer{},
		ver:     map[string]uint64{},
	}
}

// Start rebuilds timers from the persisted registrations. Rows whose trigger
// has already passed are dropped rather than fired late.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return nil
	}
	g.started = true
	g.mu.Unlock()

	if g.store == nil {
		g.log.Info("gateway started (in-memory only)")
		return nil
	}

	rows, err := g.store.ListRegistrations(ctx)
	if err != nil {
		return err
	}
	now := g.clk.Now()
	var stale []string
	restored := 0
	g.mu.Lock()
	for _, row := range rows {
		if !row.TriggerAt.After(now) {
			stale = append(stale, row.Identifier)
			continue
		}
		g.armLocked(regFromRow(row), now)
		restored++
	}
	g.mu.Unlock()
	for _, id := range stale {
		_ = g.store.DeleteRegistration(ctx, id)
	}
	g.log.Info("gateway started",
		logx.Int("restored", restored),
		logx.Int("dropped_stale", len(stale)))
	return nil
}

// Stop stops runtime timers but keeps persisted rows so the next Start()
// resumes them.
func (g *Gateway) Stop(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return nil
	}
	g.started = false
	for id, t := range g.timers {
		_ = t.Stop()
		delete(g.timers, id)
		g.ver[id]++
	}
	g.regs = map[string]reminder.Registration{}
	g.log.Info("gateway stopped")
	return nil
}

// Schedule registers r, replacing any prior registration with the same
// identifier. Triggers inside the minimum lead window are rejected with
// ErrPastTrigger (logged here; callers treat it per-event).
func (g *Gateway) Schedule(ctx context.Context, r reminder.Registration) error {
	now := g.clk.Now()
	if !r.TriggerAt.After(now.Add(g.cfg.MinLead)) {
		g.log.Warn("registration rejected (trigger too soon)",
			logx.String("identifier", r.Identifier),
			logx.Time("trigger_at", r.TriggerAt))
		return ErrPastTrigger
	}

	g.mu.Lock()
	started := g.started
	g.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	if g.store != nil {
		if err := g.store.PutRegistration(ctx, rowFromReg(r)); err != nil {
			return err
		}
	}

	g.mu.Lock()
	g.armLocked(r, now)
	g.mu.Unlock()

	g.publish(eventbus.TypeReminderScheduled, r, "")
	g.log.Debug("registration armed",
		logx.String("identifier", r.Identifier),
		logx.Time("trigger_at", r.TriggerAt))
	return nil
}

// armLocked upserts the in-memory registration and (re)creates its timer.
// Call with g.mu held.
func (g *Gateway) armLocked(r reminder.Registration, now time.Time) {
	if t, ok := g.timers[r.Identifier]; ok {
		_ = t.Stop()
	}
	g.ver[r.Identifier]++
	ver := g.ver[r.Identifier]
	g.regs[r.Identifier] = r

	delay := r.TriggerAt.Sub(now)
	if delay < 0 {
		delay = 0
	}
	id := r.Identifier
	g.timers[id] = time.AfterFunc(delay, func() { g.fire(id, ver) })
}

func (g *Gateway) fire(identifier string, ver uint64) {
	g.mu.Lock()
	if g.ver[identifier] != ver {
		// Replaced or cancelled since this timer was armed.
		g.mu.Unlock()
		return
	}
	r, ok := g.regs[identifier]
	if !ok {
		g.mu.Unlock()
		return
	}
	delete(g.regs, identifier)
	delete(g.timers, identifier)
	delete(g.ver, identifier)
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if g.store != nil {
		if err := g.store.DeleteRegistration(ctx, identifier); err != nil {
			g.log.Warn("registration cleanup failed", logx.String("identifier", identifier), logx.Err(err))
		}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		g.publish(eventbus.TypeReminderDeliveryFailed, r, err.Error())
		return
	}

	sound := r.Data["sound"] == "true"
	err := g.sink.Deliver(ctx, notify.Delivery{
		Identifier: identifier,
		Title:      r.Title,
		Body:       r.Body,
		Sound:      sound,
	})
	if err != nil {
		g.log.Warn("reminder delivery failed", logx.String("identifier", identifier), logx.Err(err))
		g.publish(eventbus.TypeReminderDeliveryFailed, r, err.Error())
		return
	}
	g.log.Info("reminder delivered", logx.String("identifier", identifier))
	g.publish(eventbus.TypeReminderDelivered, r, "")
}

// Cancel removes the registration; unknown identifiers are a no-op.
func (g *Gateway) Cancel(ctx context.Context, identifier string) error {
	g.mu.Lock()
	if t, ok := g.timers[identifier]; ok {
		_ = t.Stop()
		delete(g.timers, identifier)
	}
	_, known := g.regs[identifier]
	delete(g.regs, identifier)
	if known {
		g.ver[identifier]++
	}
	g.mu.Unlock()

	if g.store != nil {
		if err := g.store.DeleteRegistration(ctx, identifier); err != nil {
			return err
		}
	}
	if known {
		g.publish(eventbus.TypeReminderCancelled, reminder.Registration{Identifier: identifier}, "")
	}
	return nil
}

func (g *Gateway) CancelAll(ctx context.Context) error {
	g.mu.Lock()
	ids := make([]string, 0, len(g.regs))
	for id := range g.regs {
		ids = append(ids, id)
	}
	g.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := g.Cancel(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ListScheduled snapshots the pending registrations ordered by trigger time.
func (g *Gateway) ListScheduled(context.Context) ([]reminder.Registration, error) {
	g.mu.Lock()
	out := make([]reminder.Registration, 0, len(g.regs))
	for _, r := range g.regs {
		out = append(out, r)
	}
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].TriggerAt.Equal(out[j].TriggerAt) {
			return out[i].TriggerAt.Before(out[j].TriggerAt)
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out, nil
}

func (g *Gateway) PermissionStatus(ctx context.Context) reminder.PermissionStatus {
	if g.sink == nil {
		return reminder.PermissionUndetermined
	}
	if err := g.sink.Ready(ctx); err != nil {
		g.log.Debug("sink not ready", logx.Err(err))
		return reminder.PermissionDenied
	}
	return reminder.PermissionGranted
}

// SetRate re-applies the delivery rate limit, for config hot reload.
func (g *Gateway) SetRate(perSec int) {
	if perSec <= 0 {
		perSec = 1
	}
	g.limiter.SetLimit(rate.Limit(perSec))
	g.limiter.SetBurst(perSec)
}

// Available implements reminder.AvailabilityReporter.
func (g *Gateway) Available(context.Context) error {
	if g.sink == nil {
		return errors.New("no delivery sink configured")
	}
	g.mu.Lock()
	started := g.started
	g.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	return nil
}

func (g *Gateway) publish(typ string, r reminder.Registration, errStr string) {
	if g.bus == nil {
		return
	}
	g.bus.Publish(eventbus.Event{
		Type: typ,
		Data: eventbus.DeliveryEvent{
			Identifier: r.Identifier,
			ProjectID:  r.Data["project_id"],
			Title:      r.Title,
			At:         g.clk.Now(),
			Error:      errStr,
		},
	})
}

func rowFromReg(r reminder.Registration) storage.Registration {
	return storage.Registration{
		Identifier: r.Identifier,
		ProjectID:  r.Data["project_id"],
		Title:      r.Title,
		Body:       r.Body,
		TriggerAt:  r.TriggerAt,
		Sound:      r.Data["sound"] == "true",
	}
}

func regFromRow(row storage.Registration) reminder.Registration {
	return reminder.Registration{
		Identifier: row.Identifier,
		Title:      row.Title,
		Body:       row.Body,
		TriggerAt:  row.TriggerAt,
		Data: map[string]string{
			"project_id": row.ProjectID,
			"sound":      strconv.FormatBool(row.Sound),
		},
	}
}
