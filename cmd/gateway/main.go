package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"medinote-gateway/cmd"
	"medinote-gateway/internal/api"
	"medinote-gateway/internal/clients"
)

type GatewayConfig struct {
	CoreAPIURL    string `env:"CORE_API_URL,notEmpty,required"`
	ChatbotAPIURL string `env:"CHATBOT_API_URL,notEmpty,required"`
	OCRAPIURL     string `env:"OCR_API_URL,notEmpty,required"`

	APIPort  string `env:"API_PORT" envDefault:"8080"`
	UserName string `env:"USER_NAME" envDefault:"사용자"`

	STTPollInterval time.Duration `env:"STT_POLL_INTERVAL" envDefault:"2s"`
	STTMaxAttempts  int           `env:"STT_MAX_ATTEMPTS" envDefault:"150"`
	AnalysisTTL     time.Duration `env:"ANALYSIS_CACHE_TTL" envDefault:"10m"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"20"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

func main() {
	log.Println("Starting gateway server...")

	cmd.LoadEnvFile()

	var cfg GatewayConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	core := clients.NewCoreClient(cfg.CoreAPIURL)
	chatbot := clients.NewChatbotClient(cfg.ChatbotAPIURL)
	ocr := clients.NewOCRClient(cfg.OCRAPIURL)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(api.RateLimit(api.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst)))
	r.Use(api.RecordMetrics)

	gateway := api.NewGatewayService(core, chatbot, ocr, cfg.UserName, cfg.STTPollInterval, cfg.STTMaxAttempts, cfg.AnalysisTTL)
	gateway.AddRoutes(r)

	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("gateway listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
