package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderNumberSequence is the counter document backing order numbers.
const OrderNumberSequence = "order_number"

type sequence struct {
	ID        string    `bson:"_id"`
	Value     int64     `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SequenceRepository hands out counter values with a single atomic $inc.
type SequenceRepository struct {
	coll *mongo.Collection
}

// Increment bumps the counter and returns its new value. The bool is false
// when the counter has never been seeded.
func (r *SequenceRepository) Increment(ctx context.Context, name string) (int64, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var seq sequence
	err := r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{
			"$inc": bson.M{"value": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&seq)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return seq.Value, true, nil
}

// Seed creates the counter at value. It returns false when another caller
// seeded it first.
func (r *SequenceRepository) Seed(ctx context.Context, name string, value int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, sequence{ID: name, Value: value, UpdatedAt: time.Now().UTC()})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
