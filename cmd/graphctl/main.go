package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ckrest/graph-lib/internal/config"
	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/Ckrest/graph-lib/internal/logger"
	"github.com/Ckrest/graph-lib/internal/pid"
	"github.com/Ckrest/graph-lib/internal/provider"
	"github.com/Ckrest/graph-lib/internal/render"
	"github.com/Ckrest/graph-lib/internal/widget"
)

var cfg *config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug || cfg.LogLevel == "debug", cfg.Verbose || cfg.LogLevel == "info", logger.IsService())
	logger.Debug().Str("source", cfg.Source).Str("chart", cfg.Chart).Msg("Config loaded")

	if err := pid.Write(); err != nil {
		fatal(err, "failed to write PID file")
	}
	defer pid.Remove()

	prov, closeProvider, err := buildProvider(cfg)
	if err != nil {
		fatal(err, "failed to build provider")
	}
	defer closeProvider()

	w := widget.New(buildRenderer(cfg), prov, time.Duration(cfg.Interval)*time.Millisecond)
	w.OnError(func(err error) {
		ev := logger.Warn().Err(err)
		if st, ok := prov.(provider.Stater); ok {
			ev = ev.Bool("provider_running", st.Running())
		}
		ev.Msg("refresh failed")
	})
	w.Invalidate(func() {
		if err := writeChart(w); err != nil {
			logger.Error().Err(err).Str("output", cfg.Output).Msg("failed to write chart")
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	w.Start()
	logger.Info().Str("output", cfg.Output).Int("interval_ms", cfg.Interval).Msg("Rendering chart")

	<-ctx.Done()
	w.Stop()
	logger.Info().Msg("Shut down cleanly")
}

// fatal logs the error with its domain code when it carries one, then
// exits.
func fatal(err error, msg string) {
	var domainErr errors.Error
	if errors.As(err, &domainErr) {
		logger.FatalWithCode(domainErr).Msg(msg)
		return
	}

	logger.Fatal().Err(err).Msg(msg)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func buildProvider(cfg *config.Config) (provider.Provider, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case "command":
		p, err := provider.NewCommand(provider.CommandConfig{
			Command:      cfg.Command,
			Mode:         provider.Mode(cfg.Parse),
			KeyPath:      cfg.KeyPath,
			Pattern:      cfg.Pattern,
			PollInterval: time.Duration(cfg.Interval) * time.Millisecond,
			HistorySize:  cfg.History,
		})
		return p, noop, err
	case "gpu":
		p, err := provider.NewGPU(provider.GPUConfig{
			Metric:       provider.GPUMetric(cfg.Metric),
			Index:        cfg.GPUIndex,
			PollInterval: time.Duration(cfg.Interval) * time.Millisecond,
			HistorySize:  cfg.History,
		})
		return p, noop, err
	case "nvml":
		p, err := provider.NewNVML(provider.NVMLConfig{
			Metric:       provider.NVMLMetric(cfg.Metric),
			Index:        cfg.GPUIndex,
			PollInterval: time.Duration(cfg.Interval) * time.Millisecond,
			HistorySize:  cfg.History,
		})
		if err != nil {
			return nil, noop, err
		}
		return p, func() {
			if err := p.Close(); err != nil {
				logger.Warn().Err(err).Msg("NVML shutdown failed")
			}
		}, nil
	case "sqlite":
		p, err := provider.NewQuery(provider.QueryConfig{
			DBPath:      cfg.Database,
			Table:       cfg.Table,
			ValueColumn: cfg.ValueColumn,
			TimeColumn:  cfg.TimeColumn,
			Window:      time.Duration(cfg.WindowHours) * time.Hour,
			Where:       cfg.Where,
			Limit:       cfg.Limit,
		})
		return p, noop, err
	default:
		return provider.NewStatic(provider.StaticConfig{Generator: provider.GeneratorSine}), noop, nil
	}
}

func buildRenderer(cfg *config.Config) render.Renderer {
	if cfg.Chart == "gauge" {
		g := render.NewGauge()
		if cfg.Title != "" {
			g.Apply(render.GaugeOptions{Label: &cfg.Title})
		}
		return g
	}

	c := render.NewLineChart()
	show := true
	opts := render.LineOptions{ShowCurrent: &show}
	if cfg.Title != "" {
		opts.Title = &cfg.Title
	}
	if cfg.Unit != "" {
		opts.Unit = &cfg.Unit
	}
	c.Apply(opts)

	return c
}

// writeChart renders the current data into a fresh SVG document and
// atomically replaces the output file.
func writeChart(w *widget.Widget) error {
	svg := render.NewSVG(cfg.Width, cfg.Height)
	w.Draw(svg, cfg.Width, cfg.Height)

	tmp := cfg.Output + ".tmp"
	if err := os.WriteFile(tmp, svg.Bytes(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, cfg.Output)
}
