package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/livepoll/admission"
	"github.com/danielhkuo/livepoll/broadcast"
	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/ledger"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/router"
)

func main() {
	var err error

	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := ledger.New(dbConn, cfg.DatabaseType)
	hub := broadcast.NewHub(cfg.SessionBuffer)
	controller := admission.NewController(store, hub, cfg)

	if cfg.SeedPoll {
		if err := seed(context.Background(), store, controller); err != nil {
			slog.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	// Create router
	mux := router.NewRouter(store, controller, hub)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// seed creates a sample poll and casts a few votes through admission
func seed(ctx context.Context, store *ledger.Store, controller *admission.Controller) error {
	pollID, err := store.CreatePoll(ctx, "What is your favorite programming language?",
		[]string{"TypeScript", "Python", "Rust", "Go", "Java"})
	if err != nil {
		return err
	}

	poll, err := store.GetPoll(ctx, pollID)
	if err != nil {
		return err
	}

	votes := []struct {
		option  int
		token   string
		address string
	}{
		{3, "seed-1", "127.0.0.1"},
		{3, "seed-2", "127.0.0.2"},
		{2, "seed-3", "127.0.0.3"},
	}
	for _, v := range votes {
		res, err := controller.SubmitVote(ctx, pollID, poll.Options[v.option].ID, v.token, v.address)
		if err != nil {
			return err
		}
		if !res.Accepted {
			slog.Warn("seed vote rejected", "token", v.token, "reason", res.Reason)
		}
	}

	slog.Info("Seeded sample poll", "poll_id", pollID)
	return nil
}
