package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/config"
	"github.com/evanly-gh/remember-me/internal/store"
	"github.com/evanly-gh/remember-me/internal/store/blob"
	"github.com/evanly-gh/remember-me/internal/store/mariadb"
	"github.com/evanly-gh/remember-me/internal/store/postgres"
	"github.com/evanly-gh/remember-me/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Remember Me web server.
The server exposes the face analysis relay and the owner-scoped record
and roster API used by the mobile client.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initRecordStore connects the record store backend selected by config.
func initRecordStore(cfg *config.Config) (store.RecordStore, func() error, error) {
	switch cfg.Database.Driver {
	case "", "postgres":
		fmt.Println("Connecting to PostgreSQL database...")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		return postgres.NewRecordRepository(pool), pool.Close, nil
	case "mariadb", "mysql":
		fmt.Println("Connecting to MariaDB database...")
		pool, err := mariadb.Initialize(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize MariaDB: %w", err)
		}
		return mariadb.NewRecordRepository(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	records, closeStore, err := initRecordStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, err := blob.NewLocalStore(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}
	fmt.Printf("Photo storage: %s\n", blobs.Dir())

	engine, err := analysis.NewEngine(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis engine: %w", err)
	}
	fmt.Printf("Analysis engine: %s\n", engine.Name())

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, engine, records, blobs, blobs.Dir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Remember Me server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
