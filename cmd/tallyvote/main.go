package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/abrezinsky/tallyvote/internal/app"
	"github.com/abrezinsky/tallyvote/internal/auth"
	"github.com/abrezinsky/tallyvote/internal/logger"
)

var (
	version = "dev"
)

// envOr returns the environment variable value, or the fallback if unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env if present; flags and real env vars take precedence
	_ = godotenv.Load()

	port := flag.Int("port", 8081, "HTTP server port")
	dbPath := flag.String("db", envOr("TALLYVOTE_DB", "tallyvote.db"), "SQLite database path")
	adminPw := flag.String("adminpw", os.Getenv("TALLYVOTE_ADMIN_PASSWORD"), "Admin password (auto-generated if not set)")
	logLevel := flag.String("loglevel", envOr("TALLYVOTE_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `TallyVote - Voting Session Tally Server

Usage:
  tallyvote [options]

Options:
  -port int      HTTP server port (default 8081)
  -db string     SQLite database path (default "tallyvote.db")
  -adminpw str   Admin password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -version       Show version and exit
  -help          Show this help message

Environment (also read from .env):
  TALLYVOTE_DB               Database path
  TALLYVOTE_ADMIN_PASSWORD   Admin password
  TALLYVOTE_LOG_LEVEL        Log level

Examples:
  tallyvote                          # Run on port 8081 with tallyvote.db
  tallyvote -port 8080               # Run on port 8080
  tallyvote -db /data/votes.db       # Use custom database path
  tallyvote -adminpw secret123       # Use specific admin password

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("tallyvote %s\n", version)
		os.Exit(0)
	}

	// Setup admin authentication
	password := *adminPw
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Create logger with specified level
	appLog := logger.NewWithLevel(logger.ParseLevel(*logLevel))

	a, err := app.New(appLog, *dbPath, adminAuth)
	if err != nil {
		log.Fatal("Failed to initialize application:", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", *port)
	appLog.Info("Admin password", "password", password)

	if err := a.Run(addr); err != nil {
		log.Fatal(err)
	}
}
