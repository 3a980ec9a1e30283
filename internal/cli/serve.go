package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"retailshop/internal/api/handlers"
	"retailshop/internal/auth"
	"retailshop/internal/cache"
	"retailshop/internal/config"
	"retailshop/internal/database"
	"retailshop/internal/events"
	"retailshop/internal/gateway/mpesa"
	"retailshop/internal/repository"
	"retailshop/internal/service"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.ConnectDB(cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("database connected")

	if migrateOnStart {
		applied, err := database.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		log.Printf("applied %d migrations", len(applied))
	}

	publisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		return err
	}
	defer publisher.Close()

	services, err := buildServices(cfg, pool, publisher)
	if err != nil {
		return err
	}
	router := handlers.NewRouter(services)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newPublisher(cfg config.KafkaConfig) (events.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Println("KAFKA_BROKERS not set, order events are not published")
		return events.Noop{}, nil
	}
	p, err := events.NewKafkaPublisher(cfg.Brokers, cfg.OrderTopic)
	if err != nil {
		return nil, err
	}
	log.Printf("publishing order events to %s", cfg.OrderTopic)
	return p, nil
}

// buildServices wires repositories into services. Redis is optional: when it
// is unreachable products are read straight from Postgres.
func buildServices(cfg *config.Config, pool *pgxpool.Pool, publisher events.Publisher) (handlers.Services, error) {
	products := repository.NewProductRepository(pool)
	var (
		listings service.ListingCache
		stock    service.StockCache
	)

	if rdb, err := cache.ConnectRedis(cfg.Redis); err != nil {
		log.Printf("redis unavailable, product cache disabled: %v", err)
	} else {
		cached := cache.NewCachedProductRepository(products, rdb, cfg.Redis.TTL)
		products, listings, stock = cached, cached, cached
	}

	categories := repository.NewCategoryRepository(pool)
	reviews := repository.NewReviewRepository(pool)
	operations := repository.NewOperationRepository(pool)
	carts := repository.NewCartRepository(pool)
	orders := repository.NewOrderRepository(pool)
	payments := repository.NewPaymentRepository(pool)
	users := repository.NewUserRepository(pool)
	reports := repository.NewReportRepository(pool)

	issuer, err := auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return handlers.Services{}, fmt.Errorf("JWT_SECRET: %w", err)
	}
	gateway := mpesa.NewClient(cfg.Mpesa, &http.Client{Timeout: cfg.Mpesa.Timeout})
	completions := service.NewCompletions(orders, publisher, stock)
	paymentService := service.NewPaymentService(payments, gateway, completions, cfg.Mpesa.Timeout)

	return handlers.Services{
		Tokens:   issuer,
		Catalog:  service.NewCatalogService(categories, products, reviews, operations, listings),
		Carts:    service.NewCartService(carts, products),
		Checkout: service.NewCheckoutService(carts, orders, users, paymentService),
		Payments: paymentService,
		Orders:   service.NewOrderService(orders, payments, operations, completions),
		Reports:  service.NewReportService(reports),
		Accounts: service.NewAccountService(users, issuer),
	}, nil
}
