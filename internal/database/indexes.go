package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/store"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{
			collection: store.OrderCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "order_number", Value: 1}},
					Options: options.Index().SetName("order_number_unique").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "user_id", Value: 1}},
					Options: options.Index().SetName("user_id_index"),
				},
				{
					Keys:    bson.D{{Key: "created_at", Value: 1}},
					Options: options.Index().SetName("created_at_index"),
				},
			},
		},
		{
			collection: store.UserDiscountCodeCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "code", Value: 1}},
					Options: options.Index().SetName("user_code_unique").SetUnique(true),
				},
			},
		},
		{
			collection: store.CartCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
					Options: options.Index().SetName("user_item_index"),
				},
			},
		},
		{
			collection: store.UserCollection,
			models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("email_unique").SetUnique(true),
				},
			},
		},
	}
}

// EnsureIndexes creates the indexes every collection relies on. A failing
// collection is logged and the remaining ones are still attempted.
func EnsureIndexes(db *mongo.Database, logger logrus.FieldLogger) error {
	var firstErr error
	for _, plan := range indexPlan() {
		if err := ensureCollectionIndexes(db, plan); err != nil {
			logger.WithError(err).WithField("collection", plan.collection).Warn("index creation failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.WithField("collection", plan.collection).Debug("indexes ensured")
	}
	return firstErr
}

func ensureCollectionIndexes(db *mongo.Database, plan collectionIndexes) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
	return err
}
