package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
)

type ItemRepository struct {
	coll *mongo.Collection
}

func (r *ItemRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Item, 0, len(ids))
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) IDsByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(
		ctx,
		bson.M{"category_id": categoryID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make([]primitive.ObjectID, 0)
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

type CartRepository struct {
	coll *mongo.Collection
}

// RemoveItems deletes the user's cart entries for the items. Items that are
// not in the cart are ignored.
func (r *CartRepository) RemoveItems(ctx context.Context, userID primitive.ObjectID, itemIDs []primitive.ObjectID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{
		"user_id": userID,
		"item_id": bson.M{"$in": itemIDs},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type FacilityRepository struct {
	coll *mongo.Collection
}

func (r *FacilityRepository) FindByType(ctx context.Context, facilityType string) (*models.CheckoutFacility, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var facility models.CheckoutFacility
	err := r.coll.FindOne(ctx, bson.M{
		"type":       facilityType,
		"is_deleted": bson.M{"$ne": true},
	}).Decode(&facility)
	if err != nil {
		return nil, translate(err)
	}
	return &facility, nil
}

type DiscountCodeRepository struct {
	coll *mongo.Collection
}

func (r *DiscountCodeRepository) Used(ctx context.Context, userID primitive.ObjectID, code string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	count, err := r.coll.CountDocuments(
		ctx,
		bson.M{"user_id": userID, "code": code},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
