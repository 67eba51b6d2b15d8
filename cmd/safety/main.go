package main

import (
	"context"
	"errors"

	bookingrepo "dira/internal/booking/repository"
	emergencyhandler "dira/internal/emergency/handler"
	emergencyservice "dira/internal/emergency/service"
	listingrepo "dira/internal/listing/repository"
	moderationrepo "dira/internal/moderation/repository"
	trustconsumer "dira/internal/trust/consumer"
	trusthandler "dira/internal/trust/handler"
	trustservice "dira/internal/trust/service"
	userrepo "dira/internal/user/repository"
	"dira/pkg/app"
	"dira/pkg/classifier"
	"dira/pkg/config"
	"dira/pkg/contracts"
	"dira/pkg/kafka"
	kafka_config "dira/pkg/kafka/config"
	kafka_middleware "dira/pkg/kafka/middleware"
	"dira/pkg/notifier"
)

const ServiceName = "safety"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Safety service")

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

	listingRepo := listingrepo.NewMongoListingRepository(cfg)
	messageRepo := moderationrepo.NewMongoMessageRepository(cfg)
	ticketRepo := moderationrepo.NewMongoTicketRepository(cfg)
	auditRepo := moderationrepo.NewMongoAuditRepository(cfg)

	trustSvc := trustservice.NewTrustService(listingRepo, messageRepo, ticketRepo, auditRepo, cls, dispatcher, cfg)
	emergencySvc := emergencyservice.NewEmergencyService(
		bookingrepo.NewMongoBookingRepository(cfg),
		listingRepo,
		userrepo.NewMongoUserRepository(cfg),
		ticketRepo,
		auditRepo,
		dispatcher,
		cfg,
	)

	chatConsumer, err := trustconsumer.NewChatConsumer(
		kafkaCfg,
		cfg.ChatMessagesTopic,
		cfg.ChatMessagesGroupID,
		cfg.ChatMessagesDLQTopic,
		trustSvc,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create chat consumer", "error", err)
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := chatConsumer.Start(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Chat consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication(cfg, contracts.Compose(
		trusthandler.NewTrustHandler(trustSvc, cfg.Log),
		emergencyhandler.NewEmergencyHandler(emergencySvc, cfg.Log),
	))
	serverApp.OnShutdown(func() {
		stopConsumer()
		if err := chatConsumer.Close(); err != nil {
			cfg.Log.Warn("Failed to close chat consumer", "error", err)
		}
		if err := dispatcher.Close(); err != nil {
			cfg.Log.Warn("Failed to close notifications producer", "error", err)
		}
	})
	serverApp.Run()
}
