package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SHIN-ko/chuihyang-sub000/internal/reminder"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

func TestStartStop(t *testing.T) {
	t.Parallel()
	d := New(Config{ResyncAt: "04:00"}, logx.Nop(),
		func(context.Context) error { return nil },
		func(context.Context) reminder.Report { return reminder.Report{} })

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	// Second Start is a no-op, not a duplicate cron.
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	d.Stop(ctx)
	d.Stop(ctx)
}

func TestStartRejectsBadResyncAt(t *testing.T) {
	t.Parallel()
	d := New(Config{ResyncAt: "25:99"}, logx.Nop(), nil, nil)
	if err := d.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid resync time")
	}
}

func TestRunJobRecoversPanic(t *testing.T) {
	t.Parallel()
	d := New(Config{}, logx.Nop(), nil, nil)
	d.runJob(context.Background(), "boom", func(context.Context) error {
		panic("kaboom")
	})
	// Reaching here means the panic was contained.
}

func TestRunJobTimeout(t *testing.T) {
	t.Parallel()
	d := New(Config{JobTimeout: 50 * time.Millisecond}, logx.Nop(), nil, nil)

	done := make(chan error, 1)
	d.runJob(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("job was not cancelled")
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	h, m, err := parseHHMM("04:30")
	if err != nil || h != 4 || m != 30 {
		t.Fatalf("got %d:%d, %v", h, m, err)
	}
	for _, bad := range []string{"24:00", "aa:bb", ""} {
		if _, _, err := parseHHMM(bad); err == nil {
			t.Errorf("parseHHMM(%q): expected error", bad)
		}
	}
}
