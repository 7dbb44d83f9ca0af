package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/hillrush/hillrush/internal/archive"
	"github.com/hillrush/hillrush/internal/game"
	"github.com/hillrush/hillrush/internal/game/config"
	"github.com/hillrush/hillrush/internal/game/tuning"
	"github.com/hillrush/hillrush/internal/packs"
	"github.com/hillrush/hillrush/internal/replay"
	"github.com/hillrush/hillrush/internal/transport/ws"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "config.json", "config file path")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "terrain seed, 0 = time-based")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "observer websocket listen address")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "replay and archive directory")
	flag.BoolVar(&cfg.Record, "record", cfg.Record, "write replay files")
	flag.StringVar(&cfg.Biome, "biome", cfg.Biome, "fixed biome name, empty = endless cycling")
	flag.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "tuning.yaml path")
	flag.StringVar(&cfg.PackDir, "pack", cfg.PackDir, "level pack directory")
	drive := flag.Bool("drive", false, "hold throttle when no client is connected (headless runs)")
	flag.Parse()

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	fromFile, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	config.Merge(cfg, fromFile, explicit)

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *drive, log); err != nil {
		log.Error("sim error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, drive bool, log *slog.Logger) error {
	tune := tuning.Default()
	if cfg.TuningPath != "" {
		var err error
		tune, err = tuning.Load(cfg.TuningPath)
		if err != nil {
			return err
		}
		log.Info("tuning loaded", "path", cfg.TuningPath)
	}

	scfg := game.SessionConfig{
		Seed:       cfg.Seed,
		Gravity:    tune.Gravity,
		TickRateHz: tune.TickRateHz,
		SpawnX:     120,
		Streamer:   tune.StreamerConfig(),
		Vehicle:    tune.VehicleConfig(),
		FixedBiome: cfg.Biome,
	}

	if cfg.PackDir != "" {
		manifest, err := packs.Load(cfg.PackDir)
		if err != nil {
			return err
		}
		scfg.Biomes = manifest.ToBiomes()
		scfg.Streamer = manifest.Apply(scfg.Streamer)
		log.Info("level pack loaded", "pack", manifest.Name, "version", manifest.Version, "biomes", len(scfg.Biomes))
	}

	session, err := game.NewSession(scfg, log)
	if err != nil {
		return err
	}

	runs, err := archive.Open(filepath.Join(cfg.DataDir, "runs.db"))
	if err != nil {
		return err
	}
	defer runs.Close()

	var rec *replay.Recorder
	if cfg.Record {
		rec, err = replay.NewRecorder(filepath.Join(cfg.DataDir, "replays"), cfg.Seed)
		if err != nil {
			return err
		}
		defer rec.Close()
		log.Info("recording run", "id", rec.RunID(), "path", rec.Path())
	}

	hub := ws.NewServer(ws.Bootstrap{
		Seed:       cfg.Seed,
		TickRateHz: tune.TickRateHz,
		Biome:      cfg.Biome,
	}, log)
	defer hub.CloseAll()

	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", hub.BootstrapHandler())
	mux.HandleFunc("/ws", hub.WSHandler())
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info("sim running", "addr", cfg.Addr, "seed", cfg.Seed, "tickRate", tune.TickRateHz)

	started := time.Now()
	ticker := time.NewTicker(time.Second / time.Duration(tune.TickRateHz))
	defer ticker.Stop()

	var controls game.Controls
	for {
		select {
		case <-ctx.Done():
			runs.Record(archive.Run{
				ID:         runID(rec),
				Seed:       cfg.Seed,
				StartedAt:  started,
				Duration:   time.Since(started),
				Distance:   session.Distance(),
				Ticks:      session.Tick(),
				ReplayPath: replayPath(rec),
			})
			runs.Flush()
			log.Info("run finished", "ticks", session.Tick(), "distance", session.Distance())
			return nil
		case <-ticker.C:
			// Latest intent wins when clients outpace the tick.
			for {
				select {
				case c := <-hub.Controls():
					controls = c
					continue
				default:
				}
				break
			}

			if drive && hub.ClientCount() == 0 {
				controls = game.Controls{Throttle: true}
			}

			frame := session.Step(controls)
			hub.Broadcast(frame)
			if rec != nil {
				if err := rec.Write(frame); err != nil {
					log.Error("write replay frame", "error", err)
					_ = rec.Close()
					rec = nil
				}
			}
		}
	}
}

func runID(rec *replay.Recorder) string {
	if rec == nil {
		return uuid.NewString()
	}
	return rec.RunID()
}

func replayPath(rec *replay.Recorder) string {
	if rec == nil {
		return ""
	}
	return rec.Path()
}
