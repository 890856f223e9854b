package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-cartridge/config"
	"github.com/fekuna/omnipos-cartridge/internal/cart/sweeper"
	saleListenerPkg "github.com/fekuna/omnipos-cartridge/internal/sale/listener"
	"github.com/fekuna/omnipos-cartridge/internal/session"
	"github.com/fekuna/omnipos-cartridge/internal/shop"
	"github.com/fekuna/omnipos-cartridge/internal/store/memory"
	storePG "github.com/fekuna/omnipos-cartridge/internal/store/postgres"
	"github.com/fekuna/omnipos-cartridge/pkg/broker"
	"github.com/fekuna/omnipos-cartridge/pkg/cache"
	"github.com/fekuna/omnipos-cartridge/pkg/database/postgres"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/fekuna/omnipos-cartridge/pkg/search"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	optionTypes, err := config.ParseOptionTypes(cfg.Shop.OptionTypes)
	if err != nil {
		log.Fatalf("invalid SHOP_OPTION_TYPES: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open the store
	var repos shop.Repositories
	switch cfg.Store.Driver {
	case "memory":
		repos = shop.MemoryRepositories(memory.NewStore())
		appLogger.Warn("Using in-memory store; data is lost on restart")
	default:
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		if cfg.Store.Migrate {
			if err := storePG.Migrate(ctx, db); err != nil {
				appLogger.Fatal("Could not migrate database", zap.Error(err))
			}
		}
		repos = shop.PostgresRepositories(db)
	}

	opts := shop.Options{
		OptionTypes: optionTypes,
		CartExpiry:  cfg.Shop.CartExpiry(),
		UseUpsell:   cfg.Shop.UseUpsellProducts,
	}

	// 4. Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

		opts.Sessions = session.RedisFactory(redisClient.Client, cfg.Shop.SessionTTL())
		if cfg.Shop.ReserveStockOnAdd {
			opts.Locker = redisClient
		}
	}

	// 5. Initialize Kafka
	var saleConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		orderProducer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
		})
		defer orderProducer.Close()
		opts.Publisher = orderProducer

		saleConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.SaleTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer saleConsumer.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("sale_topic", cfg.Kafka.SaleTopic))
	}

	// 6. Initialize Elasticsearch
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			// Search is optional; the shop runs without it.
			appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
		} else {
			opts.Indexer = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize UseCases
	app := shop.New(repos, opts, appLogger)

	// 8. Background workers
	if saleConsumer != nil {
		go saleListenerPkg.NewSaleListener(saleConsumer, app.Sales, appLogger).Start(ctx)
	}
	go sweeper.NewCartSweeper(app.Carts, cfg.Shop.CartSweepInterval(), appLogger).Start(ctx)

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

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
	healthServer.Shutdown()
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
