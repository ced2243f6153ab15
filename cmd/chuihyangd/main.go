package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdnotify "github.com/coreos/go-systemd/v22/daemon"

	"github.com/SHIN-ko/chuihyang-sub000/internal/app"
)

func main() {
	var (
		cfgPath  string
		diagnose bool
		resync   bool
	)
	flag.StringVar(&cfgPath, "config", "./config.json", "path to config file (json or yaml)")
	flag.BoolVar(&diagnose, "diagnose", false, "print the diagnostics report and exit")
	flag.BoolVar(&resync, "resync", false, "reschedule all projects and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	switch {
	case diagnose:
		rep, err := a.DiagnoseOnce(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			os.Exit(1)
		}
		fmt.Print(rep.Format())
		if rep.Summary.Errors > 0 {
			os.Exit(1)
		}
		return
	case resync:
		if err := a.ResyncOnce(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			os.Exit(1)
		}
		return
	}

	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}
	_, _ = sdnotify.SdNotify(false, sdnotify.SdNotifyReady)

	<-ctx.Done()
	_, _ = sdnotify.SdNotify(false, sdnotify.SdNotifyStopping)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = a.Stop(stopCtx)
}
