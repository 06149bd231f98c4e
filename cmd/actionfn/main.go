// The actionfn binary serves the agent action-group function over HTTP.
// The agent runtime (or a local harness) POSTs invocation envelopes to
// /invoke and receives the campaign context envelope back.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/wanderly/campaign-studio/internal/actionfn"
	"github.com/wanderly/campaign-studio/internal/catalog"
	"github.com/wanderly/campaign-studio/internal/config"
	"github.com/wanderly/campaign-studio/internal/objectstore"
	"github.com/wanderly/campaign-studio/internal/pkg/logger"
	"github.com/wanderly/campaign-studio/internal/segment"
)

func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	fetcher, err := objectstore.New(ctx, cfg.Data, cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	handler := actionfn.NewHandler(
		catalog.New(fetcher, cfg.Data.FlightsKey),
		segment.NewStore(fetcher, cfg.Data.SegmentsKey, cfg.Data.UsersKey),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/invoke", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var event actionfn.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "invalid invocation envelope", http.StatusBadRequest)
			return
		}

		resp := handler.Handle(r.Context(), event)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	port := 9090
	if v := os.Getenv("ACTIONFN_PORT"); v != "" {
		fmt.Sscanf(v, "%d", &port)
	}
	addr := fmt.Sprintf(":%d", port)

	logger.Info("starting action function server", "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
