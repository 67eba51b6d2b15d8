package main

import (
	"context"

	bookingrepo "dira/internal/booking/repository"
	deposithandler "dira/internal/deposit/handler"
	depositservice "dira/internal/deposit/service"
	depositvalidator "dira/internal/deposit/validator"
	moderationrepo "dira/internal/moderation/repository"
	pricinghandler "dira/internal/pricing/handler"
	pricingservice "dira/internal/pricing/service"
	verificationhandler "dira/internal/verification/handler"
	verificationservice "dira/internal/verification/service"
	"dira/pkg/app"
	"dira/pkg/classifier"
	"dira/pkg/config"
	"dira/pkg/contracts"
	"dira/pkg/gateway"
	"dira/pkg/kafka"
	kafka_config "dira/pkg/kafka/config"
	kafka_middleware "dira/pkg/kafka/middleware"
	"dira/pkg/notifier"
)

const ServiceName = "finance"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Finance service")

	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.NotificationsTopic, "")
	if err != nil {
		cfg.Log.Fatal("Failed to create notifications producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	dispatcher := notifier.NewKafkaDispatcher(producer, ServiceName, cfg.Log)

	cls, err := classifier.NewGeminiClassifier(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create classifier", "error", err)
	}

	serverApp := app.NewApplication(cfg, contracts.Compose(
		pricinghandler.NewPricingHandler(pricingservice.NewPricingService(cfg), cfg.Log),
		deposithandler.NewDepositHandler(initDepositService(cfg, dispatcher), cfg.Log),
		verificationhandler.NewVerificationHandler(verificationservice.NewVerificationService(cls, cfg), cfg.Log),
	))
	serverApp.OnShutdown(func() {
		if err := dispatcher.Close(); err != nil {
			cfg.Log.Warn("Failed to close notifications producer", "error", err)
		}
	})
	serverApp.Run()
}

func initDepositService(cfg *config.Config, dispatcher notifier.Dispatcher) depositservice.DepositService {
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewDepositLockRepository(cfg)
	auditRepo := moderationrepo.NewMongoAuditRepository(cfg)
	gw := gateway.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayTimeout, cfg.Log)
	depositValidator := depositvalidator.NewDepositValidator(cfg.Log)

	svc := depositservice.NewDepositService(
		bookingRepo,
		lockRepo,
		auditRepo,
		gw,
		dispatcher,
		depositValidator,
		cfg,
	)

	cfg.Log.Info("Deposit service initialized", "database", cfg.MongoDatabaseName)
	return svc
}
