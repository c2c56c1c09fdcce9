package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/spray/cloud"
	"github.com/pthm-cable/spray/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = use configured max_time)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	c, err := cloud.New(cfg, cloud.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to build cloud", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	slog.Info("starting spray simulation",
		"seed", rngSeed,
		"dt", cfg.Time.DT,
		"max_time", cfg.Time.MaxTime,
		"injectors", len(cfg.Injectors),
	)

	for {
		if err := c.Step(); err != nil {
			slog.Error("step failed", "tick", c.Tick(), "error", err)
			os.Exit(1)
		}
		if *maxTicks > 0 && int(c.Tick()) >= *maxTicks {
			break
		}
		if *maxTicks == 0 && cfg.Time.MaxTime > 0 && c.Time() >= cfg.Time.MaxTime {
			break
		}
	}

	slog.Info("simulation finished",
		"ticks", c.Tick(),
		"sim_time", c.Time(),
		"total_injected", c.TotalInjected(),
		"total_volume", c.TotalVolume(),
		"active_parcels", c.ActiveParcels(),
	)
}
