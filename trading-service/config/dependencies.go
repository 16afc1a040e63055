package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/draftea/trading-system/shared/events"
	sharedinfra "github.com/draftea/trading-system/shared/infrastructure"
	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/shared/telemetry"
	"github.com/draftea/trading-system/trading-service/application"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/draftea/trading-system/trading-service/handlers"
	"github.com/draftea/trading-system/trading-service/infrastructure"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Dependencies struct {
	// Database, nil with the memory driver
	DB *sqlx.DB

	// Repositories
	PurchaseRepository  domain.PurchaseRepository
	CatalogRepository   domain.CatalogRepository
	InventoryRepository domain.InventoryRepository
	UserRepository      domain.UserRepository

	// Replica writers fed by catalog, inventory and identity events
	CatalogReplica   domain.CatalogReplica
	InventoryReplica domain.InventoryReplica
	UserReplica      domain.UserReplica

	// Use Cases
	CalculatePurchaseTotal *application.CalculatePurchaseTotal
	ProcessPurchaseEvent   *application.ProcessPurchaseEvent
	SubmitPurchase         *application.SubmitPurchase
	GetPurchaseState       *application.GetPurchaseState
	GetStore               *application.GetStore
	SyncStoreReplica       *application.SyncStoreReplica

	// HTTP Handlers
	TradingHandlers *handlers.TradingHandlers

	// Event Handlers
	TradingEventHandlers *handlers.TradingEventHandlers

	// Infrastructure
	EventPublisher  *sharedinfra.SNSPublisherAdapter
	EventSubscriber *sharedinfra.SQSSubscriberAdapter
	Notifier        *infrastructure.WebSocketNotifier

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.TradingServiceConfig.
			WithServiceName(config.ServiceName).
			WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			// Continue without telemetry rather than failing
			logger.WarnContext(ctx, "failed to initialize telemetry", "error", err)
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	if err := deps.buildRepositories(ctx, config); err != nil {
		deps.Close()
		return nil, err
	}

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(ctx, sharedinfra.AWSOptions{
		Region:          config.AWS.Region,
		AccessKeyID:     config.AWS.AccessKeyID,
		SecretAccessKey: config.AWS.SecretAccessKey,
		Endpoint:        config.AWS.EndpointSNS,
	}, Routes(config.Queues), logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	eventSubscriber, err := sharedinfra.NewSQSSubscriberAdapter(ctx, sharedinfra.AWSOptions{
		Region:          config.AWS.Region,
		AccessKeyID:     config.AWS.AccessKeyID,
		SecretAccessKey: config.AWS.SecretAccessKey,
		Endpoint:        config.AWS.EndpointSQS,
	}, config.AWS.SQSQueueURL, logger, sharedinfra.WithWorkers(config.Saga.SQSWorkers))
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create SQS subscriber: %w", err)
	}
	deps.EventSubscriber = eventSubscriber

	deps.Notifier = infrastructure.NewWebSocketNotifier(logger)

	deps.buildUseCases(config, logger)

	return deps, nil
}

func (d *Dependencies) buildRepositories(ctx context.Context, config *Config) error {
	catalog, err := SeedCatalog(config.Storage.Catalog)
	if err != nil {
		return err
	}

	if config.Storage.Driver == StorageDriverMemory {
		store := infrastructure.NewMemoryStoreRepository(catalog...)

		d.PurchaseRepository = infrastructure.NewMemoryPurchaseRepository()
		d.CatalogRepository = store
		d.InventoryRepository = store
		d.UserRepository = store.Users()
		d.CatalogReplica = store
		d.InventoryReplica = store
		d.UserReplica = store
		return nil
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	d.DB = db

	purchases := infrastructure.NewPostgresPurchaseRepository(db)
	if err := purchases.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to create purchase schema: %w", err)
	}
	if err := infrastructure.InitStoreSchema(ctx, db); err != nil {
		return fmt.Errorf("failed to create store schema: %w", err)
	}

	catalogRepository := infrastructure.NewPostgresCatalogRepository(db)
	inventoryRepository := infrastructure.NewPostgresInventoryRepository(db)
	userRepository := infrastructure.NewPostgresUserRepository(db)

	if err := SeedCatalogReplica(ctx, catalogRepository, catalogRepository, catalog); err != nil {
		return err
	}

	d.PurchaseRepository = purchases
	d.CatalogRepository = catalogRepository
	d.InventoryRepository = inventoryRepository
	d.UserRepository = userRepository
	d.CatalogReplica = catalogRepository
	d.InventoryReplica = inventoryRepository
	d.UserReplica = userRepository
	return nil
}

func (d *Dependencies) buildUseCases(config *Config, logger *slog.Logger) {
	d.CalculatePurchaseTotal = application.NewCalculatePurchaseTotal(d.CatalogRepository)
	d.SubmitPurchase = application.NewSubmitPurchase(d.EventPublisher)
	d.GetPurchaseState = application.NewGetPurchaseState(d.PurchaseRepository)
	d.GetStore = application.NewGetStore(d.CatalogRepository, d.InventoryRepository, d.UserRepository)
	d.SyncStoreReplica = application.NewSyncStoreReplica(d.CatalogReplica, d.InventoryReplica, d.UserReplica)

	outbox := application.NewOutbox(d.PurchaseRepository, d.EventPublisher, d.Notifier, logger,
		application.WithReleaseRetry(config.Saga.ReleaseAttempts, config.Saga.ReleaseInterval),
	)
	d.ProcessPurchaseEvent = application.NewProcessPurchaseEvent(
		application.NewCorrelationRouter(),
		d.PurchaseRepository,
		application.NewPurchaseStateMachine(d.CalculatePurchaseTotal),
		outbox,
		d.EventPublisher,
		application.WithMaxRedrives(config.Saga.MaxRedrives),
		application.WithProcessLogger(logger),
		application.WithObservers(
			application.NewMetricsObserver(d.Telemetry),
			TransitionLogger(logger),
		),
	)

	// Initialize handlers
	d.TradingHandlers = handlers.NewTradingHandlers(d.SubmitPurchase, d.GetPurchaseState, d.GetStore)
	d.TradingEventHandlers = handlers.NewTradingEventHandlers(d.ProcessPurchaseEvent, d.SyncStoreReplica, handlers.RetryPolicy{
		Attempts: config.Saga.RetryAttempts,
		Interval: config.Saga.RetryInterval,
	}, logger)
}

// TransitionLogger logs every purchase state change
func TransitionLogger(logger *slog.Logger) application.OutcomeObserver {
	return application.ObserverFunc(func(ctx context.Context, t *application.Transition) {
		if !t.Outcome.Mutates() || t.Instance == nil {
			return
		}
		logger.InfoContext(ctx, "purchase transitioned",
			"correlation_id", t.Instance.CorrelationID,
			"from", t.From,
			"to", t.To(),
			"outcome", t.Outcome,
			"version", t.Instance.Version,
		)
	})
}

// Routes builds the SNS routing table from the configured queues
func Routes(queues []Queue) sharedinfra.Routes {
	routes := make(sharedinfra.Routes, len(queues))
	for _, q := range queues {
		routes[events.Topic(q.Topic)] = q.TopicARN
	}
	return routes
}

// SeedCatalogReplica writes the configured catalog into an empty replica. Once the replica
// holds items, catalog service events own it.
func SeedCatalogReplica(ctx context.Context, reader domain.CatalogRepository, replica domain.CatalogReplica, catalog []*domain.CatalogItem) error {
	existing, err := reader.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog replica: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, item := range catalog {
		if err := replica.UpsertCatalogItem(ctx, item); err != nil {
			return fmt.Errorf("failed to seed catalog item %s: %w", item.Name, err)
		}
	}
	return nil
}

// SeedCatalog parses the configured catalog
func SeedCatalog(seeds []CatalogSeed) ([]*domain.CatalogItem, error) {
	items := make([]*domain.CatalogItem, 0, len(seeds))
	for _, seed := range seeds {
		id, err := models.NewID(seed.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog item id %q: %w", seed.ID, err)
		}
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price for catalog item %s: %w", seed.Name, err)
		}
		items = append(items, &domain.CatalogItem{
			ID:          id,
			Name:        seed.Name,
			Description: seed.Description,
			Price:       price,
		})
	}
	return items, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.EventSubscriber != nil {
		if err := d.EventSubscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event subscriber: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.Notifier != nil {
		d.Notifier.Close()
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
