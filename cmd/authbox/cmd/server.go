package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/jmcleod/authbox/api"
	"github.com/jmcleod/authbox/sensor"
	bboltstorage "github.com/jmcleod/authbox/storage/bbolt"
)

var (
	port     int
	dataDir  string
	seedUser string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the kiosk-facing REST server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		repo, err := bboltstorage.NewRepositoryFromFile(dataDir+"/authbox.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		defer repo.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		frames := sensor.NewFrameCache()
		fixes := sensor.NewFixCache()
		a := api.New(repo, frames, fixes,
			api.WithLogger(logger),
			api.WithDataDir(dataDir),
			api.WithAlertFunc(func(e api.AlertEvent) {
				logger.Warn("anomaly alert",
					slog.String("type", string(e.Type)),
					slog.String("message", e.Message),
					slog.Int("count", e.Count))
			}))

		if seedUser != "" {
			id, password, name, err := splitSeedUser(seedUser)
			if err != nil {
				return err
			}
			if err := a.SeedUser(id, password, name); err != nil {
				return fmt.Errorf("failed to seed user: %w", err)
			}
			fmt.Printf("Seeded user %s\n", id)
		}

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (data: %s)...\n", port, dataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

// splitSeedUser parses "id:password[:name]".
func splitSeedUser(s string) (id, password, name string, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("--seed-user must be id:password[:name]")
	}
	id, password = parts[0], parts[1]
	if len(parts) == 3 {
		name = parts[2]
	}
	return id, password, name, nil
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 5000, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
	serverCmd.Flags().StringVar(&seedUser, "seed-user", "", "Provision a kiosk user as id:password[:name]")
}
