package main

import (
	"log"
	"strings"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/config"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/controllers"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/database"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/kafka"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/middleware"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/repository"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/routes"
	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.ConnectPostgres(cfg, logger,
		&models.Offer{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer database.Close(db)

	// Redis backs the payment-verification replay cache. The service
	// degrades to DB-only idempotency without it.
	var idemRepo repository.IdempotencyRepository
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, replay cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			idemRepo = repository.NewRedisIdempotencyRepository(redisClient)
		}
	}

	var orderProducer, paymentProducer kafka.ProducerAPI
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		op := kafka.NewProducer(brokers, cfg.OrderEventsTopic, logger)
		defer op.Close()
		pp := kafka.NewProducer(brokers, cfg.PaymentEventsTopic, logger)
		defer pp.Close()
		orderProducer, paymentProducer = op, pp
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	orderRepo := repository.NewGormOrderRepository(db)
	offerRepo := repository.NewGormOfferRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)

	gateway := services.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)

	checkoutService := services.NewCheckoutService(orderRepo, offerRepo, cartRepo, historyRepo, orderProducer, logger)
	paymentService := services.NewPaymentService(orderRepo, idemRepo, gateway, paymentProducer, cfg.GatewayCurrency, logger)

	oc := controllers.NewOrderController(checkoutService)
	pc := controllers.NewPaymentController(paymentService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(r, oc, pc)

	logger.Info("Order service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
