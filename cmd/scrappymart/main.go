package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhi-elliot/ScrappyMart/internal/config"
	"github.com/bhi-elliot/ScrappyMart/internal/database"
	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/logging"
	"github.com/bhi-elliot/ScrappyMart/internal/preset"
	"github.com/bhi-elliot/ScrappyMart/internal/server"
	"github.com/bhi-elliot/ScrappyMart/internal/sharelink"
	"github.com/bhi-elliot/ScrappyMart/internal/store"
	ws "github.com/bhi-elliot/ScrappyMart/internal/websocket"
)

const usage = `usage: scrappymart [-config path] <command> [flags]

commands:
  serve              run the HTTP server (default)
  decode <link>      print the list carried by a share link
  encode [-list id]  print the share link for a stored list
  backup -out file   write an encrypted backup of all lists
  restore -in file   replace stored lists from a backup
`

func main() {
	fs := flag.NewFlagSet("scrappymart", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default "+config.DefaultPath+")")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	cmd, args := "serve", fs.Args()
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	if cmd == "decode" {
		os.Exit(runDecode(args))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "encode":
		err = runEncode(cfg, logger, args)
	case "backup":
		err = runBackup(cfg, args)
	case "restore":
		err = runRestore(cfg, logger, args)
	default:
		fs.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func serve(cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	hub := ws.NewHub(logger.With("component", "websocket"))
	catalog := preset.NewClient(preset.Config{
		BaseURL:   cfg.PresetURL,
		CacheSize: cfg.PresetCacheSize,
		CacheTTL:  cfg.PresetCacheTTL,
	}, logger.With("component", "presets"))

	lists := liststore.New(store.NewStateStore(db), liststore.Options{
		Logger:   logger.With("component", "liststore"),
		Links:    sharelink.NewHolder(cfg.ImportLink),
		BaseURL:  cfg.BaseURL,
		OnChange: server.Notify(hub),
	})
	lists.Load()

	srv := server.New(lists, catalog, hub, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ScrappyMart running", "addr", "http://localhost:"+cfg.Port, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
