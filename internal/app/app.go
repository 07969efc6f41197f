package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"mechmania/server/internal/game"
	servernet "mechmania/server/internal/net"
	"mechmania/server/internal/net/ws"
	"mechmania/server/internal/replay"
	"mechmania/server/internal/sim"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
	"mechmania/server/logging/lifecycle"
	loggingSinks "mechmania/server/logging/sinks"
	"mechmania/server/maps"
)

const shutdownTimeout = 5 * time.Second

// Run serves one match: it waits for every seat to be claimed, runs the tick
// loop until the match is decided or ctx ends, then shuts the listener down.
func Run(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}

	router, err := newRouter(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			logger.Printf("failed to close logging router: %v", cerr)
		}
	}()
	metrics := telemetry.WrapMetrics(router.Metrics())

	desc, err := loadMap(cfg.MapPath)
	if err != nil {
		return err
	}
	engine, err := sim.NewEngine(desc, sim.Deps{
		Logger:    logger,
		Metrics:   metrics,
		Publisher: router,
		Clock:     logging.SystemClock{},
	})
	if err != nil {
		return fmt.Errorf("failed to construct engine: %w", err)
	}

	hub := ws.NewHub(logger, metrics)
	var recorder *replay.Writer
	loop := sim.NewLoop(engine, sim.LoopConfig{TickRate: cfg.TickRate}, sim.LoopHooks{
		AfterStep: func(step sim.LoopStepResult) {
			if recorder != nil {
				if err := recorder.Write(replay.FromStep(step)); err != nil {
					logger.Printf("replay write failed at tick %d: %v", step.Tick, err)
				}
			}
			hub.BroadcastTick(step)
		},
	})

	clients := servernet.NewClientManager(servernet.ClientManagerConfig{
		Capacity: cfg.Players,
		OnFull: func(seated []servernet.Client) {
			roster := make([]string, 0, len(seated))
			for _, client := range seated {
				if err := engine.AddPlayer(client.ID); err != nil {
					logger.Printf("failed to add %s: %v", client.ID, err)
					continue
				}
				roster = append(roster, string(client.ID))
			}
			lifecycle.MatchStarted(ctx, router, lifecycle.MatchStartedPayload{Players: roster})
		},
	})

	sessions := ws.NewHandler(hub, clients, loop, ws.HandlerConfig{
		Logger:       logger,
		Publisher:    router,
		CommandRate:  cfg.CommandRate,
		CommandBurst: cfg.CommandBurst,
	})
	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Clients:   clients,
		Match:     loop,
		Sessions:  sessions,
		Logger:    logger,
		Publisher: router,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("server listening on %s, waiting for %d players", srv.Addr, cfg.Players)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// The match ending stops the listener too.
		defer cancel()
		select {
		case <-clients.Started():
		case <-gctx.Done():
			return nil
		}
		if cfg.ReplayPath != "" {
			w, err := replay.Create(cfg.ReplayPath, replay.Options{
				Codec:    cfg.ReplayCodec,
				Compress: cfg.ReplayCompress,
			}, replay.NewHeader(engine))
			if err != nil {
				return fmt.Errorf("failed to open replay log: %w", err)
			}
			defer func() {
				if cerr := w.Close(); cerr != nil {
					logger.Printf("failed to close replay log: %v", cerr)
				}
			}()
			recorder = w
		}
		if err := loop.Run(gctx); err != nil {
			return fmt.Errorf("match aborted at tick %d: %w", engine.Tick(), err)
		}
		logger.Printf("match over at tick %d", engine.Tick())
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func loadMap(path string) (game.MapDescription, error) {
	if path == "" {
		return maps.Board1()
	}
	return game.LoadMapFile(path)
}

func newRouter(cfg Config, logger telemetry.Logger) (*logging.Router, error) {
	logCfg := logging.DefaultConfig()
	logCfg.EnabledSinks = cfg.LogSinks

	var named []logging.NamedSink
	for _, name := range cfg.LogSinks {
		switch name {
		case logging.SinkConsole:
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsole(os.Stdout)})
		case logging.SinkJSON:
			file, err := os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", cfg.LogJSONPath, err)
			}
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(file, logCfg.JSON.FlushInterval)})
		case logging.SinkZap:
			sink, err := loggingSinks.NewZap(nil)
			if err != nil {
				return nil, fmt.Errorf("build zap sink: %w", err)
			}
			named = append(named, logging.NamedSink{Name: name, Sink: sink})
		default:
			logger.Printf("ignoring unknown log sink %q", name)
		}
	}
	return logging.NewRouter(logging.SystemClock{}, logCfg, named)
}
