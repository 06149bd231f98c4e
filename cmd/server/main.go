package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wanderly/campaign-studio/internal/agent"
	"github.com/wanderly/campaign-studio/internal/api"
	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/config"
	"github.com/wanderly/campaign-studio/internal/extractor"
	"github.com/wanderly/campaign-studio/internal/mailer"
	"github.com/wanderly/campaign-studio/internal/objectstore"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
	"github.com/wanderly/campaign-studio/internal/segment"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	ctx := context.Background()

	fetcher, err := objectstore.New(ctx, cfg.Data, cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	cat := catalog.New(fetcher, cfg.Data.FlightsKey)
	segments := segment.NewStore(fetcher, cfg.Data.SegmentsKey, cfg.Data.UsersKey)

	agentClient, err := agent.New(ctx, cfg.Agent)
	if err != nil {
		log.Fatalf("Failed to initialize agent client: %v", err)
	}
	if !agentClient.Configured() {
		logger.Warn("no agent id configured, campaigns will use the fallback generator")
	}

	var previews api.PreviewSender
	if cfg.Mailer.Enabled {
		sender, err := mailer.New(ctx, cfg.Mailer)
		if err != nil {
			log.Fatalf("Failed to initialize mailer: %v", err)
		}
		previews = sender
	}

	handlers := api.NewHandlers(
		cat,
		segments,
		agentClient,
		extractor.New(nil),
		extractor.NewFallbackGenerator(),
		previews,
	)
	server := api.NewServer(cfg.Server, handlers)

	addr := fmt.Sprintf("%s:%d", host, port)
	logger.Info("starting campaign studio server",
		"addr", addr,
		"agent_configured", agentClient.Configured(),
		"cache_enabled", cfg.Cache.Enabled,
		"mailer_enabled", cfg.Mailer.Enabled)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Shutdown failed: %v", err)
		}
	}
}
