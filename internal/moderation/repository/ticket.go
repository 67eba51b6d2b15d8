package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"dira/pkg/config"
	"dira/pkg/model"
)

const (
	TicketCollectionName = "Support_tickets"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.SupportTicket) error
}

type mongoTicketRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTicketRepository(cfg *config.Config) TicketRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTicketRepository{
		cfg:        cfg,
		collection: db.Collection(TicketCollectionName),
	}
}

func (r *mongoTicketRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ticket.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if ticket.Status == "" {
		ticket.Status = model.TicketOpen
	}

	result, err := r.collection.InsertOne(ctx, ticket)
	if err != nil {
		return fmt.Errorf("failed to create support ticket: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		ticket.ID = oid.Hex()
	}
	return nil
}
