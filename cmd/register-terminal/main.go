package main

import (
	"flag"
	"log"

	"go-pos-sync/internal/config"
	"go-pos-sync/internal/service"
	"go-pos-sync/internal/store"
	"go-pos-sync/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	name := flag.String("name", "", "terminal name, e.g. register-1")
	accessKey := flag.String("access-key", "", "access key the terminal will log in with (min 8 chars)")
	flag.Parse()

	if *name == "" || *accessKey == "" {
		log.Fatal("❌ Usage: register-terminal -name <name> -access-key <key>")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}

	cfg, err := config.New[config.Config]()
	if err != nil {
		log.Fatalf("❌ Failed to parse config: %v", err)
	}

	// 2. Setup Database
	db, err := database.OpenLocal(cfg.Local.DSN())
	if err != nil {
		log.Fatalf("❌ Failed to open local database: %v", err)
	}
	local, err := store.NewLocal(db)
	if err != nil {
		log.Fatalf("❌ Failed to migrate local database: %v", err)
	}

	// 3. Register
	terminal, err := service.RegisterTerminal(local, *name, *accessKey)
	if err != nil {
		log.Fatalf("❌ Failed to register terminal: %v", err)
	}

	log.Printf("✅ Success! Terminal %q registered with ID %s", terminal.Name, terminal.ID)
	log.Printf("Log in via POST /api/v1/auth/login with the terminal name and access key")
}
