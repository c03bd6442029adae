package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rentflow/internal/app/commands"
	paymentapp "rentflow/internal/app/handlers/payment"
	productapp "rentflow/internal/app/handlers/product"
	rentalapp "rentflow/internal/app/handlers/rental"
	reviewapp "rentflow/internal/app/handlers/review"
	userapp "rentflow/internal/app/handlers/user"
	"rentflow/internal/app/middleware"
	appoutbox "rentflow/internal/app/outbox"
	"rentflow/internal/app/queries"
	"rentflow/internal/app/uow"
	domainproduct "rentflow/internal/domain/product"
	domainuser "rentflow/internal/domain/user"
	"rentflow/internal/infra/broker/kafka"
	"rentflow/internal/infra/config"
	mongodb "rentflow/internal/infra/db/mongo"
	ginserver "rentflow/internal/infra/http/gin"
	"rentflow/internal/infra/obs"
	infraoutbox "rentflow/internal/infra/outbox"
	"rentflow/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("FIXTURES_PATH", defaultFixturesPath())
	if err := app.loadFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err, "path", fixturesPath)
	}

	for _, runner := range app.workers {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(runner)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		app.close(shutdownCtx, logger)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	workers  []func(context.Context) error
	ready    func() error
	closers  []func(context.Context) error

	uowFactory uow.UoWFactory
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application

	var uowFactory uow.UoWFactory
	var box appoutbox.Outbox
	var idStore middleware.IdempotencyStore
	app.ready = func() error { return nil }

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := mongodb.EnsureIndexes(indexCtx, client.DB); err != nil {
			return application{}, fmt.Errorf("mongo indexes: %w", err)
		}
		uowFactory = mongodb.NewFactory(client.DB)
		store := infraoutbox.NewStore(client.DB)
		box = store
		idStore = mongodb.NewIdempotencyStore(client.DB)
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		app.closers = append(app.closers, client.Close)

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "app://rentflow",
				Backoff:     cfg.RetryBackoff,
			}
			app.workers = append(app.workers, worker.Run)

			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "rentflow-audit", nil, kafka.AuditHandler{Logger: logger})
			if err != nil {
				return application{}, fmt.Errorf("kafka consumer: %w", err)
			}
			app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
			topics := []string{
				cfg.KafkaTopicPrefix + "rental.events.v1",
				cfg.KafkaTopicPrefix + "product.events.v1",
				cfg.KafkaTopicPrefix + "payment.events.v1",
				cfg.KafkaTopicPrefix + "review.events.v1",
			}
			app.workers = append(app.workers, func(ctx context.Context) error {
				return consumer.Run(ctx, topics)
			})
		} else {
			logger.Warn("KAFKA_BROKERS not set, outbox relay disabled")
		}
	default:
		store := memory.NewStore()
		uowFactory = memory.NewFactory(store)
		box = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}
	app.uowFactory = uowFactory

	commandBus := commands.NewInMemoryBus()
	encoder := appoutbox.JSONEventEncoder{}

	commands.RegisterHandler(commandBus, userapp.CreateUserCommand{}.Key(), &userapp.CreateUserHandler{UoWFactory: uowFactory, Logger: logger})
	commands.RegisterHandler(commandBus, productapp.CreateProductCommand{}.Key(), &productapp.CreateProductHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, productapp.RemoveProductCommand{}.Key(), &productapp.RemoveProductHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, rentalapp.CreateRentalCommand{}.Key(), &rentalapp.CreateRentalHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, rentalapp.CompleteRentalCommand{}.Key(), &rentalapp.CompleteRentalHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, rentalapp.RemoveRentalCommand{}.Key(), &rentalapp.RemoveRentalHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, reviewapp.CreateReviewCommand{}.Key(), &reviewapp.CreateReviewHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})
	commands.RegisterHandler(commandBus, paymentapp.CreatePaymentCommand{}.Key(), &paymentapp.CreatePaymentHandler{UoWFactory: uowFactory, Outbox: box, Encoder: encoder, Logger: logger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, rentalapp.GetRentalQuery{}.Key(), &rentalapp.GetRentalHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, rentalapp.ListRentalsQuery{}.Key(), &rentalapp.ListRentalsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, productapp.GetProductQuery{}.Key(), &productapp.GetProductHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	app.handlers = ginserver.Handlers{
		User:    ginserver.UserHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Product: ginserver.ProductHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Rental:  ginserver.RentalHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
		Review:  ginserver.ReviewHandler{Commands: commandBusWithMiddleware, Logger: logger},
		Payment: ginserver.PaymentHandler{Commands: commandBusWithMiddleware, Logger: logger},
	}
	return app, nil
}

func (a application) close(ctx context.Context, logger *slog.Logger) {
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil {
			logger.Error("shutdown cleanup failed", "error", err)
		}
	}
}

func (a application) loadFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fx fixtures
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fx.Users) == 0 && len(fx.Products) == 0 {
		return nil
	}

	unit, err := a.uowFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	ctx = uow.Bind(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	now := time.Now().UTC()
	for _, f := range fx.Users {
		u, err := domainuser.New(domainuser.CreateParams{
			ID:        domainuser.UserID(f.ID),
			Name:      f.Name,
			Email:     f.Email,
			CreatedAt: now,
		})
		if err != nil {
			logger.Error("user fixture invalid", "user_id", f.ID, "error", err)
			continue
		}
		if err := unit.Users().Save(ctx, u); err != nil {
			return err
		}
	}
	for _, f := range fx.Products {
		p, err := domainproduct.New(domainproduct.CreateParams{
			ID:               domainproduct.ProductID(f.ID),
			OwnerID:          domainuser.UserID(f.OwnerID),
			Title:            f.Title,
			Description:      f.Description,
			PricePerDayCents: f.PricePerDayCents,
			DepositCents:     f.DepositCents,
			Condition:        domainproduct.Condition(f.Condition),
			Location:         f.Location,
			Images:           f.Images,
			CreatedAt:        now,
		})
		if err != nil {
			logger.Error("product fixture invalid", "product_id", f.ID, "error", err)
			continue
		}
		if err := unit.Products().Save(ctx, p); err != nil {
			return err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	logger.Info("fixtures imported", "users", len(fx.Users), "products", len(fx.Products))
	return nil
}

type fixtures struct {
	Users []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"users"`
	Products []struct {
		ID               string   `json:"id"`
		OwnerID          string   `json:"owner_id"`
		Title            string   `json:"title"`
		Description      string   `json:"description"`
		PricePerDayCents int64    `json:"price_per_day_cents"`
		DepositCents     int64    `json:"deposit_cents"`
		Condition        string   `json:"condition"`
		Location         string   `json:"location"`
		Images           []string `json:"images"`
	} `json:"products"`
}

func defaultFixturesPath() string {
	return filepath.Join("data", "fixtures.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
