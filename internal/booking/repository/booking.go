package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "dira/internal/booking/errors"
	"dira/pkg/config"
	"dira/pkg/model"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	SetDepositAuthorization(ctx context.Context, id string, version int64, tier model.DepositTier, authID string, amount int64) error
	MarkDepositCaptured(ctx context.Context, id string, version int64, amount int64) error
	MarkDepositReleased(ctx context.Context, id string, version int64) error
	ActivateEmergency(ctx context.Context, id string, version int64, triggeredAt time.Time) error
	ApplySwap(ctx context.Context, id string, version int64, newListingID, newHostID string, newBasePrice int64) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout caps the operation at the configured repository timeout,
// never extending a tighter caller deadline.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	booking.Version = 1
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) SetDepositAuthorization(ctx context.Context, id string, version int64, tier model.DepositTier, authID string, amount int64) error {
	return r.updateVersioned(ctx, id, version, bson.M{
		"financials.deposit_tier":        tier,
		"financials.deposit_auth_id":     authID,
		"financials.deposit_hold_amount": amount,
	})
}

func (r *mongoBookingRepository) MarkDepositCaptured(ctx context.Context, id string, version int64, amount int64) error {
	return r.updateVersioned(ctx, id, version, bson.M{
		"financials.deposit_captured":        true,
		"financials.deposit_captured_amount": amount,
	})
}

func (r *mongoBookingRepository) MarkDepositReleased(ctx context.Context, id string, version int64) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return r.updateVersioned(ctx, id, version, bson.M{
		"financials.deposit_released":    true,
		"financials.deposit_released_at": now,
	})
}

func (r *mongoBookingRepository) ActivateEmergency(ctx context.Context, id string, version int64, triggeredAt time.Time) error {
	return r.updateVersioned(ctx, id, version, bson.M{
		"status":                                  model.BookingSOSCritical,
		"emergency_protocol.is_active":            true,
		"emergency_protocol.triggered_at":         triggeredAt,
		"emergency_protocol.stage":                0,
		"emergency_protocol.host_response_status": model.HostResponseWaiting,
	})
}

func (r *mongoBookingRepository) ApplySwap(ctx context.Context, id string, version int64, newListingID, newHostID string, newBasePrice int64) error {
	return r.updateVersioned(ctx, id, version, bson.M{
		"listing_id": newListingID,
		"host_id":    newHostID,
		"base_price": newBasePrice,
	})
}

// updateVersioned performs a compare-and-swap update: it matches the
// document by id and current version, applies the changes, and increments
// the version. A miss is classified as not-found or version conflict.
func (r *mongoBookingRepository) updateVersioned(ctx context.Context, id string, version int64, changes bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "version": version}
	update := bson.M{
		"$set": changes,
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return fmt.Errorf("failed to classify update miss: %w", countErr)
		}
		if count == 0 {
			return bookingerrors.ErrNotFound
		}
		return bookingerrors.ErrVersionConflict
	}

	return nil
}
