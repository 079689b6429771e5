package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/skwarz/pkg/api"
	"github.com/cbodonnell/skwarz/pkg/config"
	"github.com/cbodonnell/skwarz/pkg/game"
	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/matchmaking"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/cbodonnell/skwarz/pkg/version"
	"github.com/cbodonnell/skwarz/pkg/workers"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	port := flag.Int("port", 0, "Port to listen on (overrides the config file)")
	logLevel := flag.String("log-level", "", "Log level (overrides the config file)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := game.NewManager(game.NewManagerOptions{
		BasePath: cfg.Server.Path,
		Settings: cfg.Settings(),
	})

	coordinator := matchmaking.NewCoordinator(matchmaking.NewCoordinatorOptions{
		Registry:      tickets.NewRegistry(tickets.NewRegistryOptions{Path: cfg.Server.Path + "/ws"}),
		MinPlayers:    cfg.Matchmaking.MinPlayers,
		MaxPlayers:    cfg.Matchmaking.MaxPlayers,
		DispatchDelay: cfg.Matchmaking.DispatchDelay.Std(),
		TicketTTL:     cfg.Matchmaking.TicketTTL.Std(),
		Dispatch: func(roomID int, ts []tickets.Ticket) (string, error) {
			s, err := sessions.CreateSession(ctx, roomID, ts)
			if err != nil {
				return "", err
			}
			return s.Path, nil
		},
	})
	defer coordinator.Stop()

	var tls *api.TLSConfig
	if cfg.Server.TLS != nil {
		tls = &api.TLSConfig{CertFile: cfg.Server.TLS.CertFile, KeyFile: cfg.Server.TLS.KeyFile}
	}
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:         cfg.Server.Port,
		TLS:          tls,
		Path:         cfg.Server.Path,
		AllowOrigins: cfg.Server.AllowOrigins,
		ConnOptions: network.NewWSConnOptions{
			Compress:       cfg.Server.Compress,
			SendBufferSize: cfg.Server.SendBufferSize,
		},
		Coordinator: coordinator,
		Sessions:    sessions,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	if cfg.Matchmaking.TicketTTL > 0 {
		expiryWorker := workers.NewTicketExpiryWorker(workers.NewTicketExpiryWorkerOptions{
			Expirer:  coordinator,
			Interval: cfg.Matchmaking.ExpiryInterval.Std(),
		})
		g.Go(func() error {
			expiryWorker.Start(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
