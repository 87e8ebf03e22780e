// api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"savethemars/dashboard/database"
	"savethemars/dashboard/handlers"
	"savethemars/dashboard/middleware"
	"savethemars/dashboard/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on process environment")
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize the Firebase Realtime Database client ---
	// The only fatal error class: without a validated connection handle the
	// dashboard refuses to start.
	fb, err := database.NewFirebaseClient(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase Realtime Database")
	}

	// --- Initialize Stores ---
	playerStore := store.NewPlayerStore(fb)
	eventStore := store.NewEventStore(fb, playerStore)

	// --- Initialize Handlers ---
	dashboard := handlers.NewDashboardHandlers(playerStore, eventStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())
	r.LoadHTMLGlob("templates/*.tmpl")

	r.GET("/", dashboard.Dashboard)
	r.GET("/healthz", dashboard.Health)

	api := r.Group("/api")
	{
		api.GET("/players", dashboard.GetLatestPlayers)
		api.GET("/conversions", dashboard.GetLatestConversions)
		api.GET("/purchases", dashboard.GetLatestPurchases)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Dashboard server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Dashboard server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting.")
}
