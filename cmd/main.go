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

	"github.com/gin-gonic/gin"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"domibot/internal/api"
	"domibot/internal/bot"
	"domibot/internal/config"
	"domibot/internal/interpreter"
	"domibot/internal/menu"
	"domibot/internal/monitoring"
	"domibot/internal/submit"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	// Initialize LLM
	model, err := initializeLLM(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM: %v", err)
	}

	// Initialize order archive
	db, err := submit.InitDB(cfg.Database.Path)
	if err != nil {
		log.Printf("Order archive unavailable, continuing without it: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	if _, err := os.Stat(cfg.Menu.LocalPath); err != nil {
		log.Printf("Local menu file %s unavailable; only the backend menu will be used: %v", cfg.Menu.LocalPath, err)
	}

	// Wire the bot
	monitor := monitoring.NewMonitor()
	menus := menu.NewProvider(cfg.Backend.BaseURL, cfg.Backend.RestaurantID, cfg.Menu.LocalPath)
	interp := interpreter.New(model, cfg.AI.Temperature, monitor)
	submitter := submit.NewService(cfg.Backend.BaseURL, cfg.Backend.SheetsURL, db)
	engine := bot.New(interp, submitter, menus, monitor)

	apiServer := api.NewServer(engine, db, cfg.Auth.JWTSecret)

	// Start metrics server
	go startMetricsServer(cfg.Server.MetricsPort, monitor)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: apiServer.Router(),
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}

		// Let in-flight order submissions finish.
		submitter.Wait()
	}()

	log.Printf("Starting API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// initializeLLM builds the completion client. Without an API key the
// bot still runs: every interpretation falls back to manual review.
func initializeLLM(cfg *config.Config) (llms.Model, error) {
	if cfg.AI.APIKey == "" {
		log.Println("No completion API key configured; orders will be flagged for manual review")
		return nil, nil
	}

	llm, err := openai.New(
		openai.WithModel(cfg.AI.Model),
		openai.WithBaseURL(cfg.AI.BaseURL),
		openai.WithToken(cfg.AI.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	return llm, nil
}

func startMetricsServer(port int, monitor *monitoring.Monitor) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
