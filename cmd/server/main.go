package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/auth"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/config"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/document"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/handlers"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/notifier"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/store"
)

func main() {
	_ = godotenv.Load()

	// Load Configuration
	cfg := config.LoadConfig()

	// Open Document Store
	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	repo := document.NewRepository(st)

	// Optional Discord notifications
	var registrationNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" && cfg.DiscordNotificationsChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			registrationNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, repo)
	dataHandler := handlers.NewDataHandler(repo, registrationNotifier)
	scheduleHandler := handlers.NewScheduleHandler(repo, authHandler)
	exportHandler := handlers.NewExportHandler(repo)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, authHandler, dataHandler, scheduleHandler, exportHandler)

	// Start Server
	log.Printf("Starting server on port %s (store: %s)", cfg.Port, cfg.StoreBackend)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return store.OpenSQLite(cfg.DatabasePath)
	case "badger":
		return store.OpenBadger(cfg.BadgerPath)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
