package main

import (
	"context"
	"log"

	"chatbot-be/internal/bootstrap"
	"chatbot-be/internal/config"
	"chatbot-be/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}
	if !cfg.IsDevelopment() {
		log.Fatal("Error: seeding is only allowed with APP_ENV=development")
	}
	if cfg.Database.Backend == config.StoreBackendMemory {
		log.Fatal("Error: the memory backend does not outlive this process; seed through POST /seed instead")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	defer sysLogger.Sync()

	container, err := bootstrap.NewContainer(cfg, sysLogger, nil)
	if err != nil {
		log.Fatalf("Error: failed to bootstrap: %v", err)
	}
	defer container.Close()

	res, err := container.SeedService.Seed(context.Background())
	if err != nil {
		log.Fatalf("Error: seed failed: %v", err)
	}

	for _, u := range res.Users {
		log.Printf("Seeded user %s (%s)", u.Email, u.Id)
	}
	log.Printf("Success: %s (%d chats)", res.Message, res.Chats)
}
