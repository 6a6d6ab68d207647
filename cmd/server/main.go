package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calebwils/Smart-Juris/internal/api"
	"github.com/calebwils/Smart-Juris/internal/auth"
	"github.com/calebwils/Smart-Juris/internal/config"
	"github.com/calebwils/Smart-Juris/internal/core"
	"github.com/calebwils/Smart-Juris/internal/i18n"
	"github.com/calebwils/Smart-Juris/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.Debug() {
		log.Println("Service starting in DEBUG mode")
		log.Printf("Models: generative=%s embedding=%s, AI timeout %s, default locale %s",
			cfg.GenerativeModel, cfg.EmbeddingModel, cfg.AIRequestTimeout, cfg.DefaultLocale)
	}

	libraryPath := flag.String("library", cfg.LibraryPath, "Markdown table of legal documents to embed at startup")
	flag.Parse()

	ctx := context.Background()

	// State lives in memory unless DATABASE_URL points elsewhere.
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	provider, err := core.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GenerativeModel, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	if *libraryPath != "" {
		log.Printf("Ingesting legal library from %s...", *libraryPath)
		if err := dbStore.ClearLibrary(ctx); err != nil {
			log.Fatalf("Failed to reset legal library: %v", err)
		}
		n, err := dbStore.IngestLibraryFromFile(ctx, *libraryPath, provider.Embed)
		if err != nil {
			log.Fatalf("Legal library ingestion failed: %v", err)
		}
		log.Printf("Legal library ingestion complete. Embedded %d documents.", n)
	}

	library, err := core.NewLibraryIndex(ctx, dbStore, provider)
	if err != nil {
		log.Fatalf("Failed to initialize legal library: %v", err)
	}

	gateway := core.NewGateway(provider, library, cfg.AIRequestTimeout)
	activity := core.NewActivityRecorder(dbStore)
	workspace := core.NewWorkspace(
		core.NewCaseService(dbStore),
		core.NewChatService(dbStore, gateway, activity),
		gateway,
		activity,
		library,
	)

	apiHandler := api.NewAPIHandler(workspace, auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL), i18n.Locale(cfg.DefaultLocale))
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Must outlast a full AI round trip.
		WriteTimeout: cfg.AIRequestTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
