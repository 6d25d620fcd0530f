package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/librarium/library/internal/analytics"
	"github.com/librarium/library/internal/config"
	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/internal/engine"
	"github.com/librarium/library/internal/events"
	"github.com/librarium/library/internal/metrics"
	"github.com/librarium/library/internal/repo"
	"github.com/librarium/library/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.NewConsoleLogger(cfg.LogLevel)
	defer log.Sync()

	log.Info("Library service starting")

	// Open the reservation store
	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	catalog := repo.NewCatalogRepo(database, log)
	ledger := repo.NewLedgerRepo(database, log)
	users := repo.NewUserRepo(database, log)

	// Notification channel and observers
	notifier := events.NewNotifier()

	registry := prometheus.NewRegistry()
	metrics.New(registry).Attach(notifier)

	if cfg.RabbitMQURL != "" {
		log.Info("Connecting to RabbitMQ")
		publisher, err := events.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, event bridge disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			publisher.Attach(notifier)
		}
	}

	notifier.Subscribe(events.KindNewReservation, func(e events.Event) {
		fmt.Printf("\n[INFO] New reservation: %q for %s (from %s to %s)\n\n",
			e.Item.Title, e.Reservation.UserEmail,
			e.Reservation.From.Format("2006-01-02"), e.Reservation.To.Format("2006-01-02"))
	})
	notifier.Subscribe(events.KindReservationCancelled, func(e events.Event) {
		fmt.Printf("\n[INFO] Reservation cancelled: %q by %s\n\n",
			e.Item.Title, e.Reservation.UserEmail)
	})

	// Engine and reporting
	eng := engine.New(database, catalog, ledger, users, notifier, log)
	stats := analytics.New(ledger, catalog)

	// Ops HTTP server: health and metrics
	httpMux := http.NewServeMux()
	httpMux.HandleFunc("/healthz", healthHandler(database, log))
	httpMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPOpsPort),
		Handler:      httpMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting ops HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to serve HTTP", zap.Error(err))
		}
	}()

	ctx := context.Background()
	if err := seed(ctx, catalog, users); err != nil {
		log.Fatal("Failed to seed demo data", zap.Error(err))
	}

	// Interactive console, blocks until the user quits
	runCLI(ctx, eng, catalog, users, stats, os.Stdin)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	log.Info("Library service stopped")
}

// seed loads a handful of items and users so the menu has data to work with.
func seed(ctx context.Context, catalog *repo.CatalogRepo, users *repo.UserRepo) error {
	type entry struct {
		kind, title, author, isbn, format string
	}
	entries := []entry{
		{db.KindBook, "Pan Tadeusz", "Adam Mickiewicz", "978-83-123-4567-8", ""},
		{db.KindBook, "Lalka", "Boleslaw Prus", "978-83-234-5678-9", ""},
		{db.KindEBook, "The Last Wish", "Andrzej Sapkowski", "978-83-345-6789-0", "EPUB"},
		{db.KindEBook, "Solaris", "Stanislaw Lem", "978-83-456-7890-1", "PDF"},
	}

	for _, e := range entries {
		id, err := catalog.NextItemID(ctx)
		if err != nil {
			return err
		}
		var item *db.Item
		if e.kind == db.KindEBook {
			item, err = db.NewEBook(id, e.title, e.author, e.isbn, e.format)
		} else {
			item, err = db.NewBook(id, e.title, e.author, e.isbn)
		}
		if err != nil {
			return err
		}
		if err := catalog.AddItem(ctx, item); err != nil {
			return err
		}
	}

	for _, email := range []string{"jan.kowalski@example.com", "anna.nowak@example.com"} {
		if err := users.Register(ctx, email); err != nil {
			return err
		}
	}
	return nil
}

func healthHandler(database *db.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(); err != nil {
			log.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("unhealthy: database connection failed"))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	}
}
