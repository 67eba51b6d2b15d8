package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"dira/pkg/config"
	"dira/pkg/model"
)

// DepositLockRepository provides advisory locks serializing deposit
// authorization per booking. A TTL index on expires_at reaps locks left
// behind by crashed workers.
type DepositLockRepository interface {
	Acquire(ctx context.Context, bookingID string) (*model.DepositLock, error)
	Release(ctx context.Context, bookingID string) error
}

type mongoDepositLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewDepositLockRepository(cfg *config.Config) DepositLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoDepositLockRepository{
		collection: db.Collection("Deposit_locks"),
		ttl:        cfg.DepositLockTTL,
	}
}

// Acquire inserts the lock document. A duplicate key error means another
// request holds the lock.
func (r *mongoDepositLockRepository) Acquire(ctx context.Context, bookingID string) (*model.DepositLock, error) {
	now := time.Now()
	lock := &model.DepositLock{
		ID:        bookingID,
		ExpiresAt: now.Add(r.ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoDepositLockRepository) Release(ctx context.Context, bookingID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": bookingID})
	return err
}

// IsLockHeld reports whether err is the duplicate key error raised when
// the lock is already taken.
func IsLockHeld(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
