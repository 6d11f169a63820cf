package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/contactkeval/option-greeks/internal/analyze"
	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/data"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/metrics"
	"github.com/contactkeval/option-greeks/internal/report"
	"github.com/contactkeval/option-greeks/internal/server"
	"github.com/contactkeval/option-greeks/pricing"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config (optional)")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", "", "REST server port, overrides config")
	outDir := flag.String("out", "", "report directory, overrides config")
	flag.Parse()

	if err := run(*configPath, *rest, *port, *outDir); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(configPath string, rest bool, port, outDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if outDir != "" {
		cfg.Report.Dir = outDir
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger.SetVerbosity(int(level))
	if cfg.Logging.File != "" {
		closer := logger.SetOutputFile(cfg.Logging.File, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)
		defer closer.Close()
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	engine, err := pricing.NewEngine(engineCfg)
	if err != nil {
		return err
	}
	logger.Infof("engine: precision=%s method=%s accuracy=%g", engineCfg.Precision, engineCfg.Method, engineCfg.Accuracy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	if rest {
		addr := cfg.Server.Port
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		return server.New(engine, m).ListenAndServe(ctx, addr)
	}

	start := time.Now()
	prov, err := data.NewProvider(cfg.Data, engine)
	if err != nil {
		return err
	}
	quotes, err := prov.GetQuotes(ctx)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	rows, err := analyze.New(engine, cfg.Analyze.Workers, m).Run(ctx, quotes)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
		return fmt.Errorf("could not create output dir %s: %w", cfg.Report.Dir, err)
	}
	if err := report.WriteJSON(rows, cfg.Report.Dir); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	if err := report.WriteCSV(rows, cfg.Report.Dir); err != nil {
		return fmt.Errorf("writing csv report: %w", err)
	}
	logger.Infof("finished in %v, wrote %d rows to %s", time.Since(start), len(rows), cfg.Report.Dir)
	return nil
}
