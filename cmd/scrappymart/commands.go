package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bhi-elliot/ScrappyMart/internal/backup"
	"github.com/bhi-elliot/ScrappyMart/internal/config"
	"github.com/bhi-elliot/ScrappyMart/internal/database"
	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/payload"
	"github.com/bhi-elliot/ScrappyMart/internal/sharelink"
	"github.com/bhi-elliot/ScrappyMart/internal/store"
)

const passphraseEnv = "SCRAPPYMART_BACKUP_PASSPHRASE"

func runDecode(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: scrappymart decode <link>")
		return 2
	}
	return decodeTo(os.Stdout, os.Stderr, args[0])
}

func decodeTo(stdout, stderr io.Writer, link string) int {
	p, err := payload.Parse(sharelink.Extract(link))
	if err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		fmt.Fprintf(stderr, "decode: %v\n", err)
		return 1
	}
	return 0
}

func runEncode(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	listID := fs.String("list", "", "list id (default: active list)")
	fs.Parse(args)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return encodeTo(os.Stdout, store.NewStateStore(db), logger, cfg.BaseURL, *listID)
}

// encodeTo prints the share link for listID, or the active list when empty.
// Stored state is never written.
func encodeTo(w io.Writer, p liststore.Persister, logger *slog.Logger, baseURL, listID string) error {
	lists := liststore.New(readOnlyState{p}, liststore.Options{
		Logger:  logger.With("component", "liststore"),
		BaseURL: baseURL,
	})
	lists.Load()

	if listID != "" {
		if _, ok := lists.List(listID); !ok {
			return fmt.Errorf("%w: %s", liststore.ErrListNotFound, listID)
		}
	}
	fmt.Fprintln(w, lists.ShareLink(listID))
	return nil
}

// readOnlyState drops writes so loading lists for a one-shot read leaves the
// database untouched.
type readOnlyState struct {
	liststore.Persister
}

func (readOnlyState) Save(string, string) error { return nil }

func runBackup(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	out := fs.String("out", "", "destination file")
	fs.Parse(args)
	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	sealed, err := backup.Export(context.Background(), store.NewStateStore(db), os.Getenv(passphraseEnv))
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, sealed, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

func runRestore(cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	in := fs.String("in", "", "backup file")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	doc, err := backup.Restore(store.NewStateStore(db), data, os.Getenv(passphraseEnv))
	if err != nil {
		return err
	}
	logger.Info("backup restored", "created_at", doc.CreatedAt, "records", len(doc.Records))
	return nil
}
