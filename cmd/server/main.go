package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"paper-trading-go/internal/config"
	"paper-trading-go/internal/database"
	"paper-trading-go/internal/logger"
	"paper-trading-go/internal/pricing"
	"paper-trading-go/internal/trading"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Wire the core
	priceStore := pricing.NewStore(db)
	svc := trading.NewService(log, &cfg, db, priceStore, trading.RealClock{})
	reports := trading.NewReports(log, db, priceStore)

	// Settlements scheduled before a restart are gone; the orders they
	// belonged to stay Pending. Surface that instead of masking it.
	if stuck, err := svc.PendingCount(context.Background(), cfg.Trading.AccountID); err != nil {
		log.Error("Failed to count pending orders", zap.Error(err))
	} else if stuck > 0 {
		log.Warn("Orders left Pending by a previous run; their settlements were lost",
			zap.Int64("count", stuck))
	}

	// Setup HTTP router
	apiHandler := NewAPIHandler(log, svc, reports, cfg.Trading.AccountID)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Route("/api", func(r chi.Router) {
		r.Post("/buy", apiHandler.BuyHandler)
		r.Post("/sell", apiHandler.SellHandler)
		r.Get("/holdings", apiHandler.HoldingsHandler)
		r.Get("/balance", apiHandler.BalanceHandler)
		r.Get("/orders", apiHandler.OrdersHandler)
		r.Get("/orders/{id}", apiHandler.OrderHandler)
		r.Get("/sector-allocation", apiHandler.SectorAllocationHandler)
		r.Get("/portfolio-value", apiHandler.PortfolioValueHandler)
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: r}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	go func() {
		log.Info("Starting web server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	// Let in-flight settlements finish before exiting.
	log.Info("Waiting for scheduled settlements...")
	svc.WaitForSettlements()

	log.Info("Server has been shut down.")
}
