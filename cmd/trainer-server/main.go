// Package main implements the puzzle training server with RESTful API,
// game archive imports, engine analysis, and user authentication.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chesstrainer/cmd/trainer-server/cli"
	"chesstrainer/internal/engine"
	"chesstrainer/internal/explorer"
	"chesstrainer/internal/service"
	"chesstrainer/internal/storage"
	"chesstrainer/internal/transport/http"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		os.Exit(0)
	}

	// Command-line flags
	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")

		enginePath   = flag.String("engine", "", "Path to a UCI engine binary (disables analysis if empty)")
		engineSkill  = flag.Int("engine-skill", 20, "Engine skill level 0-20")
		openingsPath = flag.String("openings", "", "Path to the opening book JSON file")
	)
	flag.Parse()

	// 1. Initialize Storage (optional)
	var store *storage.Store
	if *storagePath != "" {
		log.Printf("Initializing persistent storage at: %s", *storagePath)
		var err error
		store, err = storage.NewStore(*storagePath, *dev)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		if err := store.InitDB(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Printf("Persistent storage disabled (use -storage-path to enable)")
	}

	// 2. Initialize the analysis engine (optional)
	var analyzer service.Analyzer
	if *enginePath != "" {
		uci, err := engine.New(*enginePath)
		if err != nil {
			log.Fatalf("Failed to start engine %s: %v", *enginePath, err)
		}
		uci.SetSkillLevel(*engineSkill)
		analyzer = uci
		log.Printf("Analysis engine: %s (skill %d)", *enginePath, *engineSkill)
	} else {
		log.Printf("Analysis engine disabled (use -engine to enable)")
	}

	// 3. Opening book (tolerant of a missing file)
	book := explorer.LoadOpeningBook(*openingsPath)
	if book.Empty() {
		log.Printf("Opening book empty, openings will be reported as unknown")
	}

	// JWT secret management
	var jwtSecret []byte
	if *dev {
		// Fixed secret in dev mode for testing consistency
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Printf("Using fixed JWT secret (dev mode)")
	} else {
		// Generate cryptographically secure secret
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("JWT secret generated (sessions valid until restart)")
	}

	// 4. Initialize the Service with optional collaborators
	svc := service.New(service.Config{
		Store:     store,
		Analyzer:  analyzer,
		Openings:  book,
		JWTSecret: jwtSecret,
	})

	// Start cleanup job for expired sessions
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 5. Initialize the Fiber App/HTTP Handler
	app := http.NewFiberApp(svc, *dev)

	// API Server configuration
	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	// Start API server in a goroutine
	go func() {
		log.Printf("Puzzle Training Server starting...")
		log.Printf("API Listening on: http://%s", apiAddr)
		log.Printf("API Version: v1")
		log.Printf("Authentication: Enabled (JWT)")
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		if *storagePath != "" {
			log.Printf("Storage: Enabled (%s)", *storagePath)
		} else {
			log.Printf("Storage: Disabled (archive and auth features unavailable)")
		}
		log.Printf("API Endpoints: http://%s/api/v1/collections", apiAddr)
		log.Printf("Training Endpoints: http://%s/api/v1/training", apiAddr)
		log.Printf("Auth Endpoints: http://%s/api/v1/auth/[register|login|me]", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown of HTTP server with timeout
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cleanupCancel() // Stop cleanup job

	// Shutdown service last: closes training sessions, engine, storage
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Printf("Service shutdown error: %v", err)
	}

	log.Println("Server exited")
}
