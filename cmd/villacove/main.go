package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"villacove/internal/app/commands"
	availabilityapp "villacove/internal/app/handlers/availability"
	bookingapp "villacove/internal/app/handlers/booking"
	reportsapp "villacove/internal/app/handlers/reports"
	villasapp "villacove/internal/app/handlers/villas"
	"villacove/internal/app/middleware"
	appoutbox "villacove/internal/app/outbox"
	"villacove/internal/app/queries"
	authsvc "villacove/internal/app/services/auth"
	"villacove/internal/app/uow"
	"villacove/internal/infra/broker/kafka"
	"villacove/internal/infra/config"
	mongodb "villacove/internal/infra/db/mongo"
	ginserver "villacove/internal/infra/http/gin"
	"villacove/internal/infra/obs"
	infraoutbox "villacove/internal/infra/outbox"
	"villacove/internal/infra/security"
	"villacove/internal/infra/storage/memory"
	"villacove/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.outboxWorker != nil {
		go func() {
			if err := app.outboxWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers     ginserver.Handlers
	outboxWorker *infraoutbox.Worker
	ready        func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory   uow.UoWFactory
		outboxStore  appoutbox.Outbox
		idStore      middleware.IdempotencyStore
		outboxWorker *infraoutbox.Worker
		ready        = func() error { return nil }
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		villaRepo := mongodb.NewVillaRepository(client.DB)
		bookingRepo := mongodb.NewBookingRepository(client.DB)
		blockedRepo := mongodb.NewBlockedDateRepository(client.DB)
		idempotency := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		for _, ensure := range []func(context.Context) error{
			villaRepo.EnsureIndexes,
			bookingRepo.EnsureIndexes,
			blockedRepo.EnsureIndexes,
			idempotency.EnsureIndexes,
		} {
			if err := ensure(ctx); err != nil {
				return application{}, err
			}
		}
		store := infraoutbox.NewStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:              client.DB,
			VillaRepo:       villaRepo,
			BookingRepo:     bookingRepo,
			BlockedDateRepo: blockedRepo,
		}
		outboxStore = store
		idStore = idempotency
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			outboxWorker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events stay queued")
		}
	case "memory":
		uowFactory = memory.Factory{
			VillaRepo:       memory.NewVillaRepository(),
			BookingRepo:     memory.NewBookingRepository(),
			BlockedDateRepo: memory.NewBlockedDateRepository(),
		}
		outboxStore = memory.NewOutbox()
		idStore = memory.NewIdempotencyStore()
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, availabilityapp.BlockDatesCommand{}.Key(), &availabilityapp.BlockDatesHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, availabilityapp.UnblockDatesCommand{}.Key(), &availabilityapp.UnblockDatesHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, villasapp.CreateVillaCommand{}.Key(), &villasapp.CreateVillaHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, villasapp.UpdateVillaCommand{}.Key(), &villasapp.UpdateVillaHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, villasapp.PublishVillaCommand{}.Key(), &villasapp.PublishVillaHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
	})
	commands.RegisterHandler(commandBus, villasapp.AddPhotoCommand{}.Key(), &villasapp.AddPhotoHandler{
		UoWFactory: uowFactory,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, villasapp.CatalogQuery{}.Key(), &villasapp.CatalogHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, villasapp.DetailQuery{}.Key(), &villasapp.DetailHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.CheckQuery{}.Key(), &availabilityapp.CheckHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListByVillaQuery{}.Key(), &bookingapp.ListByVillaHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.GetByReferenceQuery{}.Key(), &bookingapp.GetByReferenceHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, reportsapp.OccupancyQuery{}.Key(), &reportsapp.OccupancyHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		AdminUser:    cfg.AdminUser,
		AdminPwdHash: cfg.AdminPasswordHash,
		Passwords:    security.BcryptHasher{},
		Tokens:       security.RandomTokenGenerator{},
		SessionTTL:   cfg.SessionTTL,
		Logger:       logger,
	}
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, back-office login disabled")
	}

	var uploader s3.Uploader
	client, err := s3.NewClient(s3.Config{
		Endpoint:       cfg.S3Endpoint,
		PublicEndpoint: cfg.S3PublicEndpoint,
		AccessKey:      cfg.S3AccessKey,
		SecretKey:      cfg.S3SecretKey,
		Bucket:         cfg.S3Bucket,
		UseSSL:         cfg.S3UseSSL,
	}, logger)
	if err != nil {
		logger.Warn("photo storage unavailable", "error", err)
		uploader = s3.NoopUploader{}
	} else {
		uploader = client
	}

	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	handlers := ginserver.Handlers{
		Site: ginserver.SiteHandler{
			Queries: queryBusWithMiddleware,
			Logger:  logger,
		},
		Booking: ginserver.BookingHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Logger:   logger,
		},
		Admin: ginserver.AdminHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Uploader: uploader,
			Logger:   logger,
		},
		Auth: ginserver.AuthHandler{
			Service: authService,
			Logger:  logger,
		},
		RequireAdmin: authMW.RequireAdmin,
	}

	return application{handlers: handlers, outboxWorker: outboxWorker, ready: ready}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
