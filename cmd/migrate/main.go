package main

import (
	"log"

	"chatbot-be/internal/config"
	"chatbot-be/internal/model"
	"chatbot-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}

	backend := cfg.Database.Backend
	if backend != config.StoreBackendPostgres && backend != config.StoreBackendSqlite {
		log.Fatalf("Error: STORE_BACKEND=%s has no schema to migrate (use postgres or sqlite)", backend)
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDB(backend, cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate All Models
	models := model.All()
	log.Printf("Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Success: Database migration completed.")
}
