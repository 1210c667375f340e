package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jogivikas/skill-exchange/internal/api"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/config"
	"github.com/jogivikas/skill-exchange/internal/database"
	"github.com/jogivikas/skill-exchange/internal/logger"
	"github.com/jogivikas/skill-exchange/internal/monitoring"
	"github.com/jogivikas/skill-exchange/internal/services"
	"github.com/jogivikas/skill-exchange/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	auth.SetSecret(cfg.JWTSecret)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up WebSocket hub
	hub := websocket.NewHub()

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db)
	matchService := services.NewMatchService(userService)
	requestService := services.NewRequestService(db, userService, eventService)
	conversationService := services.NewConversationService(db, userService)
	messageService := services.NewMessageService(db, conversationService)
	adminService := services.NewAdminService(userService, requestService)

	// Set up and run the background metrics updater
	metricsUpdater, err := monitoring.NewMetricsUpdater(adminService, hub, cfg.MetricsSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.MetricsSchedule).Msg("Invalid metrics schedule")
	}
	go metricsUpdater.Run()

	// Set up router
	router := api.NewRouter(api.Deps{
		Hub:           hub,
		Users:         userService,
		Matches:       matchService,
		Requests:      requestService,
		Conversations: conversationService,
		Messages:      messageService,
		Admin:         adminService,
		Events:        eventService,
		CORSOrigin:    cfg.CORSOrigin,
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	metricsUpdater.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
