package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	listingerrors "dira/internal/listing/errors"
	"dira/pkg/config"
	"dira/pkg/model"
)

const (
	CollectionName = "Listings"
)

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type ListingRepository interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	// AddStrike adds weight to the violation counter if it still equals
	// expected. Returns ErrVersionConflict when another report landed first.
	AddStrike(ctx context.Context, id string, expected, weight float64, at time.Time) error
	// Suspend moves the listing into investigation if it is not already
	// there. Returns true when this call performed the transition.
	Suspend(ctx context.Context, id string) (bool, error)
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoListingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	var listing model.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return &listing, nil
}

func (r *mongoListingRepository) AddStrike(ctx context.Context, id string, expected, weight float64, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "violation_count": expected}
	update := bson.M{
		"$inc": bson.M{"violation_count": weight},
		"$set": bson.M{"last_violation_at": at},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record strike: %w", err)
	}

	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return fmt.Errorf("failed to classify strike miss: %w", countErr)
		}
		if count == 0 {
			return listingerrors.ErrNotFound
		}
		return listingerrors.ErrVersionConflict
	}

	return nil
}

func (r *mongoListingRepository) Suspend(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", listingerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$ne": model.ListingSuspended},
	}
	update := bson.M{
		"$set": bson.M{"status": model.ListingSuspended},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to suspend listing: %w", err)
	}

	return result.ModifiedCount > 0, nil
}
