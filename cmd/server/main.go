package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/rulebook/internal/api"
	"github.com/dgallion1/rulebook/internal/config"
	"github.com/dgallion1/rulebook/internal/library"
	"github.com/dgallion1/rulebook/internal/parser"
	"github.com/dgallion1/rulebook/internal/source"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts, err := cfg.DocumentOptions(log)
	if err != nil {
		log.Error("invalid document options", "error", err)
		os.Exit(1)
	}
	ex, err := parser.ForFile(cfg.Source, cfg.PDFFallbackPdftotext)
	if err != nil {
		log.Error("unsupported source", "source", cfg.Source, "error", err)
		os.Exit(1)
	}
	src := source.ForLocation(cfg.Source, cfg.FetchTimeout, cfg.MaxUploadBytes)
	if hs, ok := src.(*source.HTTPSource); ok {
		hs.Log = log
		defer hs.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib := library.NewLibrary(library.Config{
		Options:         opts,
		TTL:             cfg.DocumentTTL,
		Source:          src,
		Extractor:       ex,
		Location:        cfg.Source,
		RefreshInterval: cfg.RefreshInterval,
	}, log)

	srv := api.NewServer(lib, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()
		lib.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	// /health answers "loading" until the default document is in.
	go func() {
		log.Info("loading document", "source", cfg.Source)
		if err := lib.Start(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to load document", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("starting rulebook", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
