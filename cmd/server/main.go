/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the HeartBeat attendance tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (flags > env > file > defaults)
  2. Initialize SQLite store
  3. Ensure settings exist and heal ledger rows missing requirements
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    Listen address (overrides config, default ":8000")
  -db      SQLite database path (overrides config, default: heartbeat.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/heartbeat.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on a different port
  ./server -addr=":3000"

ENVIRONMENT:
  HEARTBEAT_SERVER_ADDR, HEARTBEAT_SERVER_DB_PATH,
  HEARTBEAT_SERVER_BEARER_TOKEN, BEARER_TOKEN (legacy) - see config.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farajallah/heartbeat/api"
	"github.com/farajallah/heartbeat/attendance"
	"github.com/farajallah/heartbeat/config"
	"github.com/farajallah/heartbeat/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override config
	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	dbPath := flag.String("db", cfg.Server.DBPath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Make sure the installation is usable before serving: settings row
	// present, no ledger rows with an unset requirement.
	engine := attendance.NewEngine(store)
	ctx := context.Background()
	if _, err := engine.EnsureSettings(ctx); err != nil {
		log.Fatalf("Failed to ensure settings: %v", err)
	}
	healed, err := engine.EnsureRequiredPopulated(ctx)
	if err != nil {
		log.Fatalf("Failed to heal ledger entries: %v", err)
	}
	if healed > 0 {
		log.Printf("[Server] Healed %d entries missing required minutes", healed)
	}

	// Initialize handler and router
	handler := api.NewHandler(store, api.Config{
		BearerToken: cfg.Server.BearerToken,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("[Server] Listening on %s", *addr)
		log.Printf("[Server] Dashboard at http://localhost%s/dashboard", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
