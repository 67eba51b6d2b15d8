package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	moderationerrors "dira/internal/moderation/errors"
	"dira/pkg/config"
	"dira/pkg/model"
)

const (
	MessageCollectionName = "Chat_messages"
)

type MessageRepository interface {
	FindByID(ctx context.Context, id string) (*model.ChatMessage, error)
	Flag(ctx context.Context, id, reason string, analysis map[string]any) error
}

type mongoMessageRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMessageRepository(cfg *config.Config) MessageRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoMessageRepository{
		cfg:        cfg,
		collection: db.Collection(MessageCollectionName),
	}
}

func (r *mongoMessageRepository) FindByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", moderationerrors.ErrInvalidID, id)
	}

	var msg model.ChatMessage
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, moderationerrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to find chat message: %w", err)
	}

	return &msg, nil
}

func (r *mongoMessageRepository) Flag(ctx context.Context, id, reason string, analysis map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", moderationerrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"flagged":     true,
			"flag_reason": reason,
			"analysis":    analysis,
			"flagged_at":  now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to flag chat message: %w", err)
	}

	if result.MatchedCount == 0 {
		return moderationerrors.ErrMessageNotFound
	}

	return nil
}
