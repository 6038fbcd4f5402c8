package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arthabot/ai-service/internal/api/handlers"
	"github.com/arthabot/ai-service/internal/api/middleware"
	"github.com/arthabot/ai-service/internal/config"
	"github.com/arthabot/ai-service/internal/gemini"
	"github.com/arthabot/ai-service/internal/logger"
	"github.com/arthabot/ai-service/internal/pipeline"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx := context.Background()

	gateway, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	svc := pipeline.NewService(gateway, log)
	expenseHandler := handlers.NewExpenseHandler(svc, log)

	mux := http.NewServeMux()

	post := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
				return
			}
			fn(w, r)
		}
	}

	mux.HandleFunc("/process_expense", post(expenseHandler.ProcessMetalText))
	mux.HandleFunc("/process_image_expense", post(expenseHandler.ProcessMetalImage))
	mux.HandleFunc("/process_expense_keuangan", post(expenseHandler.ProcessFinanceText))
	mux.HandleFunc("/process_image_expense_keuangan", post(expenseHandler.ProcessFinanceImage))
	mux.HandleFunc("/process_voice_expense_keuangan", post(expenseHandler.ProcessVoice))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		expenseHandler.Health(w, r)
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(log)(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler,
		// Image payloads are inline base64; allow generous read time. The
		// write timeout must cover the slowest model call (60s media).
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting AI service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
