package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mocojobs.dev/monitor"
	"mocojobs.dev/monitor/jsearch"
	"mocojobs.dev/monitor/places"
	"mocojobs.dev/monitor/store"
)

var (
	flagConfig = flag.String("config", "config.yaml", "config file path")
	flagMonth  = flag.String("month", "", "YYYY-MM for the monthly report (default: previous month)")
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: monitor [flags] <daily|monthly|report|retag>")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	if cmd == "" {
		cmd = "daily"
	}

	env, err := monitor.LoadEnv()
	if err != nil {
		return err
	}
	cfg, err := monitor.LoadConfig(*flagConfig)
	if err != nil {
		return err
	}

	for _, dir := range []string{filepath.Dir(env.DBPath), env.OutDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	st, err := store.Open(env.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	fence, err := monitor.LoadBoundary(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	r := &monitor.Runner{
		Config: cfg,
		Store:  st,
		Jobs:   jsearch.NewClient(env.RapidAPIKey, env.RapidAPIHost),
		Places: places.NewClient(env.PlacesKey),
		Fence:  fence,
		OutDir: env.OutDir,
	}

	switch cmd {
	case "daily":
		_, err := r.RunDaily(ctx)
		return err
	case "monthly":
		return r.RunMonthly(ctx, *flagMonth)
	case "report":
		return r.RunReport(ctx)
	case "retag":
		return r.RunRetag(ctx)
	default:
		return fmt.Errorf("unknown command %q (want daily, monthly, report, or retag)", cmd)
	}
}
