// cmd/edugames/main.go
package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taiyakiedu/edugames/internal/api"
	"github.com/taiyakiedu/edugames/internal/browser"
	"github.com/taiyakiedu/edugames/internal/config"
	"github.com/taiyakiedu/edugames/internal/game"
	"github.com/taiyakiedu/edugames/internal/grpcapi"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := game.NewCatalog(cfg.GamesDir)

	srv, err := api.NewServer(cfg, catalog)
	if err != nil {
		log.Fatalf("HTTP server setup error: %v", err)
	}

	// Optional gRPC health server alongside HTTP.
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}
		go func() {
			if err := grpcapi.Serve(ctx, lis, grpcapi.NewHealthReporter(catalog), cfg.PollInterval); err != nil {
				log.Fatalf("failed to serve gRPC: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
	}()

	if cfg.OpenBrowser {
		browser.OpenAfter(cfg.BrowserDelay, cfg.URL())
	}
	log.Printf("Open %s in your browser", cfg.URL())

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}
