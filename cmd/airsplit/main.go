package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/airsplit/airsplit/internal/config"
	"github.com/airsplit/airsplit/internal/history"
	"github.com/airsplit/airsplit/internal/memory"
	"github.com/airsplit/airsplit/internal/metrics"
	"github.com/airsplit/airsplit/internal/mock"
	"github.com/airsplit/airsplit/internal/monitor"
	"github.com/airsplit/airsplit/internal/run"
	"github.com/airsplit/airsplit/internal/timer"
	"github.com/airsplit/airsplit/internal/ws"
)

func main() {
	mockMode := flag.Bool("mock", false, "Play a simulated no-save run instead of attaching to the game")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	backend := flag.String("timer", "", "Override timer backend (local or livesplit)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *backend != "" {
		cfg.Timer.Backend = *backend
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid -timer: %v", err)
		}
	}

	var t timer.Timer
	switch cfg.Timer.Backend {
	case config.BackendLiveSplit:
		ls := timer.NewLiveSplit(cfg.Timer.LiveSplitAddr)
		defer ls.Close()
		t = ls
		log.Printf("Driving LiveSplit Server at %s", cfg.Timer.LiveSplitAddr)
	default:
		local := timer.NewLocal()
		if cfg.History.Enabled {
			hist := history.NewStore(cfg.History.Dir)
			local.OnAttempt(func(a timer.Attempt) {
				st, err := hist.Record(a)
				if err != nil {
					log.Printf("[history] record attempt: %v", err)
					return
				}
				log.Printf("[history] %d attempts, %d completed", st.Attempts, st.Completed)
			})
			log.Printf("Recording attempts to %s", hist.Path())
		}
		t = local
	}

	m := metrics.New(nil)
	store := run.NewStore(0)
	broadcaster := ws.NewBroadcaster(store, cfg.Monitor.BroadcastThrottle, cfg.Monitor.SnapshotInterval, 0)
	defer broadcaster.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finder memory.Finder = memory.SystemFinder{}
	if *mockMode {
		log.Println("Starting in mock mode")
		game := mock.NewGame(nil)
		game.Start(ctx, time.Second/60)
		finder = mock.Finder{Game: game}
	} else {
		log.Printf("Starting in real mode (waiting for %v)", cfg.Monitor.ProcessNames)
	}

	mon := monitor.NewMonitor(cfg, finder, t, store, broadcaster, m)
	go mon.Start(ctx)

	server := ws.NewServer(cfg.Server, store, broadcaster, t, mon, m)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				reloaded, err := config.Load(*configPath)
				if err != nil {
					log.Printf("Config reload failed, keeping current config: %v", err)
					continue
				}
				mon.SetConfig(reloaded)
				log.Printf("Config reloaded from %s; applies from the next attachment", *configPath)
				continue
			}
			log.Println("Shutting down...")
			cancel()
			return
		}
	}()

	if err := ws.ListenAndServe(ctx, cfg.Server.Host, cfg.Server.Port, server.Handler()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
