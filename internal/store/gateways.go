package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodorder/internal/models"
)

const activeGatewayKey = "active_payment_gateway"

type GatewayRepository struct {
	db *mongo.Database
}

func (r *GatewayRepository) gateways() *mongo.Collection {
	return r.db.Collection(PaymentGatewayCollection)
}

func (r *GatewayRepository) settings() *mongo.Collection {
	return r.db.Collection(SettingCollection)
}

func (r *GatewayRepository) List(ctx context.Context) ([]models.PaymentGateway, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.gateways().Find(
		ctx,
		bson.M{"is_deleted": bson.M{"$ne": true}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	gateways := make([]models.PaymentGateway, 0)
	if err := cursor.All(ctx, &gateways); err != nil {
		return nil, err
	}
	return gateways, nil
}

func (r *GatewayRepository) Insert(ctx context.Context, gateway *models.PaymentGateway) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	gateway.CreatedAt = now
	gateway.UpdatedAt = now

	res, err := r.gateways().InsertOne(ctx, gateway)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		gateway.ID = id
	}
	return nil
}

// FindUsable returns the gateway unless it is missing or soft-deleted.
func (r *GatewayRepository) FindUsable(ctx context.Context, id primitive.ObjectID) (*models.PaymentGateway, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var gateway models.PaymentGateway
	err := r.gateways().FindOne(ctx, bson.M{
		"_id":        id,
		"is_deleted": bson.M{"$ne": true},
	}).Decode(&gateway)
	if err != nil {
		return nil, translate(err)
	}
	return &gateway, nil
}

// Activate points the checkout at the gateway.
func (r *GatewayRepository) Activate(ctx context.Context, id, by primitive.ObjectID) (*models.PaymentGateway, error) {
	gateway, err := r.FindUsable(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setting := models.ActiveGatewaySetting{
		ID:        activeGatewayKey,
		GatewayID: gateway.ID,
		UpdatedBy: by,
		UpdatedAt: time.Now().UTC(),
	}
	_, err = r.settings().ReplaceOne(
		ctx,
		bson.M{"_id": activeGatewayKey},
		setting,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

// Active resolves the gateway the checkout currently points at.
func (r *GatewayRepository) Active(ctx context.Context) (*models.PaymentGateway, error) {
	lookupCtx, cancel := withTimeout(ctx)
	defer cancel()

	var setting models.ActiveGatewaySetting
	if err := r.settings().FindOne(lookupCtx, bson.M{"_id": activeGatewayKey}).Decode(&setting); err != nil {
		return nil, translate(err)
	}
	return r.FindUsable(ctx, setting.GatewayID)
}
