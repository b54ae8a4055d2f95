package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-ledger-service/config"
	"github.com/fekuna/omnipos-ledger-service/internal/app"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/httpapi"
	"github.com/fekuna/omnipos-ledger-service/pkg/broker"
	"github.com/fekuna/omnipos-ledger-service/pkg/cache"
	"github.com/fekuna/omnipos-ledger-service/pkg/i18n"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/fekuna/omnipos-ledger-service/pkg/search"

	analyticsH "github.com/fekuna/omnipos-ledger-service/internal/analytics/handler"
	analyticsListenerPkg "github.com/fekuna/omnipos-ledger-service/internal/analytics/listener"
	analyticsUCPkg "github.com/fekuna/omnipos-ledger-service/internal/analytics/usecase"

	backupH "github.com/fekuna/omnipos-ledger-service/internal/backup/handler"
	backupUCPkg "github.com/fekuna/omnipos-ledger-service/internal/backup/usecase"

	"github.com/fekuna/omnipos-ledger-service/internal/bill"
	billH "github.com/fekuna/omnipos-ledger-service/internal/bill/handler"
	billSearchPkg "github.com/fekuna/omnipos-ledger-service/internal/bill/search"
	billUCPkg "github.com/fekuna/omnipos-ledger-service/internal/bill/usecase"

	"github.com/fekuna/omnipos-ledger-service/internal/extraction"
	extractionH "github.com/fekuna/omnipos-ledger-service/internal/extraction/handler"
	"github.com/fekuna/omnipos-ledger-service/internal/extraction/gemini"
	extractionUCPkg "github.com/fekuna/omnipos-ledger-service/internal/extraction/usecase"

	prodH "github.com/fekuna/omnipos-ledger-service/internal/product/handler"
	prodUCPkg "github.com/fekuna/omnipos-ledger-service/internal/product/usecase"

	shopH "github.com/fekuna/omnipos-ledger-service/internal/shop/handler"
	shopUCPkg "github.com/fekuna/omnipos-ledger-service/internal/shop/usecase"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceSource = "omnipos-ledger-service"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	// 1.5 Initialize i18n (embedded en and id catalogs, extra ones from LOCALES_DIR)
	i18n.Init()
	if dir := os.Getenv("LOCALES_DIR"); dir != "" {
		for _, lang := range []string{"en", "id"} {
			if err := i18n.Load(dir + "/active." + lang + ".json"); err != nil {
				log.Printf("Failed to load %s locales: %v", lang, err)
			}
		}
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.IsDevelopment() {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Open the store and its repositories
	store, err := app.OpenStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not open store", zap.Error(err))
	}
	defer store.Close()

	// 4. Initialize Redis (analytics cache and rename locks)
	var (
		analyticsCache analyticsUCPkg.Cache
		renameLocker   shopUCPkg.Locker
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis (analytics cache and rename locks disabled)", zap.Error(err))
		} else {
			defer redisClient.Close()
			analyticsCache = redisClient
			renameLocker = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5. Initialize Kafka
	var (
		kafkaPublisher event.Publisher
		kafkaConsumer  *broker.KafkaConsumer
	)
	if cfg.Kafka.Enabled {
		brokerCfg := &broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}
		producer := broker.NewProducer(brokerCfg)
		defer producer.Close()
		kafkaPublisher = event.NewKafkaPublisher(producer, serviceSource)

		kafkaConsumer = broker.NewConsumer(brokerCfg)
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 5.5 Initialize Elasticsearch
	var billIndexer bill.Indexer
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			// Bill search falls back to scanning the store.
			appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		} else {
			indexer := billSearchPkg.NewElasticIndexer(esClient, cfg.Elastic.Index)
			if err := indexer.EnsureIndex(context.Background()); err != nil {
				appLogger.Warn("Could not create bill index", zap.String("index", cfg.Elastic.Index), zap.Error(err))
			}
			billIndexer = indexer
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 5.8 Initialize the bill extractor
	var extractor extraction.Extractor
	if cfg.Extractor.APIKey != "" {
		gemCfg := gemini.Config{
			APIKey:        cfg.Extractor.APIKey,
			Model:         cfg.Extractor.Model,
			FallbackModel: cfg.Extractor.FallbackModel,
			Timeout:       cfg.Extractor.Timeout,
		}
		client, err := gemini.NewClient(context.Background(), gemCfg)
		if err != nil {
			appLogger.Warn("Could not create Gemini client (bill extraction disabled)", zap.Error(err))
		} else {
			extractor = gemini.NewExtractor(client.Models, gemCfg, appLogger)
			appLogger.Info("Bill extraction enabled", zap.String("model", cfg.Extractor.Model))
		}
	} else {
		appLogger.Info("GEMINI_API_KEY not set, bill extraction disabled")
	}

	// 6. Initialize UseCases
	analyticsUC := analyticsUCPkg.NewAnalyticsUseCase(store.Bills, store.Products, store.Shops, analyticsCache, analyticsUCPkg.Config{
		CacheTTL:    cfg.Analytics.CacheTTL,
		TopProducts: cfg.Analytics.TopProducts,
	}, appLogger)

	publisher := event.Fanout{
		event.PublisherFunc(func(ctx context.Context, _ event.LedgerEvent) error {
			return analyticsUC.Invalidate(ctx)
		}),
		kafkaPublisher,
	}

	prodUC := prodUCPkg.NewProductUseCase(store.Products, publisher, appLogger)
	shopUC := shopUCPkg.NewShopUseCase(store.Shops, store.Bills, billIndexer, renameLocker, publisher, appLogger)
	billUC := billUCPkg.NewBillUseCase(store.Bills, store.Products, store.Shops, billIndexer, publisher, appLogger)
	backupUC := backupUCPkg.NewBackupUseCase(store.Backup, store.Bills, store.Products, store.Shops, billIndexer, publisher, appLogger)
	extractionUC := extractionUCPkg.NewExtractionUseCase(extractor, store.Products, store.Shops, appLogger)

	// 6.5 Initialize Listeners
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if kafkaConsumer != nil {
		ledgerListener := analyticsListenerPkg.NewLedgerListener(kafkaConsumer, analyticsUC, appLogger)
		go ledgerListener.Start(ctx)
	}

	// 7. Start HTTP Server
	router := httpapi.NewRouter(appLogger,
		prodH.NewProductHandler(prodUC, appLogger),
		shopH.NewShopHandler(shopUC, appLogger),
		billH.NewBillHandler(billUC, appLogger),
		analyticsH.NewAnalyticsHandler(analyticsUC, appLogger),
		backupH.NewBackupHandler(backupUC, appLogger),
		extractionH.NewExtractionHandler(extractionUC, appLogger),
	)
	httpServer := &http.Server{
		Addr:    normalizePort(cfg.Server.HTTPPort),
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 8. Start gRPC Server
	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer()

	// Register Services
	analyticsH.RegisterAnalyticsServer(grpcServer, analyticsH.NewAnalyticsGRPCHandler(analyticsUC, appLogger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(analyticsH.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
