package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mkessler/sqlrun"
	"github.com/mkessler/sqlrun/config"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 7432, "TCP port to listen on")
	connection := flag.String("connection", "", "Database URL (overrides config)")
	configPath := flag.String("config", "", "Path to a JSON configuration file")
	jwtSecret := flag.String("jwtSecret", "", "Enable JWT auth with this HS256 secret")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected iss claim (optional)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sqlrun server v%s\n", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *connection != "" {
		cfg.Database.URL = *connection
	}
	if secret := os.Getenv("SQLRUN_JWT_SECRET"); secret != "" && *jwtSecret == "" {
		*jwtSecret = secret
	}
	for _, note := range cfg.Notes {
		log.Printf("Config: %s", note)
	}

	instance, err := sqlrun.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer instance.Close()

	var authConfig *AuthConfig
	if *jwtSecret != "" {
		authConfig = &AuthConfig{
			Enabled:   true,
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
		}
	}

	server := NewServer(instance, authConfig)
	addr := fmt.Sprintf(":%d", *port)
	if err := server.Start(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   sqlrun Batch Server v%-14s ║\n", Version)
	fmt.Println("║   SQL Script Batch Runner             ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d, target %s\n", *port, cfg.Database.URL)
	fmt.Println(`Send {"sql": "..."} requests (one per line), 'quit' to disconnect`)
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
