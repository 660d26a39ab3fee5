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

// OrderQuery selects orders. Zero-valued fields do not filter.
type OrderQuery struct {
	UserID      *primitive.ObjectID
	Status      string
	OrderType   string
	PaymentType string
	PanelType   string
	// CreatedFrom is inclusive, CreatedBefore exclusive.
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	// ItemIDs matches orders containing at least one of the items.
	ItemIDs []primitive.ObjectID
	Skip    int64
	Limit   int64
}

func (q OrderQuery) Filter() bson.M {
	filter := bson.M{}
	if q.UserID != nil {
		filter["user_id"] = *q.UserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.OrderType != "" {
		filter["order_type"] = q.OrderType
	}
	if q.PaymentType != "" {
		filter["payment_type"] = q.PaymentType
	}
	if q.PanelType != "" {
		filter["panel_type"] = q.PanelType
	}
	if q.CreatedFrom != nil || q.CreatedBefore != nil {
		created := bson.M{}
		if q.CreatedFrom != nil {
			created["$gte"] = *q.CreatedFrom
		}
		if q.CreatedBefore != nil {
			created["$lt"] = *q.CreatedBefore
		}
		filter["created_at"] = created
	}
	if q.ItemIDs != nil {
		filter["item_details"] = bson.M{
			"$elemMatch": bson.M{"id": bson.M{"$in": q.ItemIDs}},
		}
	}
	return filter
}

// OrderTotals is the $group result over a set of orders.
type OrderTotals struct {
	Orders         int64   `bson:"orders" json:"orders"`
	Tips           float64 `bson:"tips" json:"tips"`
	Bags           float64 `bson:"bags" json:"bags"`
	ServiceCharge  float64 `bson:"service_charge" json:"service_charge"`
	DeliveryCharge float64 `bson:"delivery_charge" json:"delivery_charge"`
	OrderTotal     float64 `bson:"order_total" json:"order_total"`
}

type OrderRepository struct {
	db *mongo.Database
}

func (r *OrderRepository) coll() *mongo.Collection {
	return r.db.Collection(OrderCollection)
}

// Insert stores the order and, when code is non-nil, the discount code usage
// in the same transaction. IDs and timestamps are filled in on success.
func (r *OrderRepository) Insert(ctx context.Context, order *models.Order, code *models.UserDiscountCode) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	if code == nil {
		_, err := r.coll().InsertOne(ctx, order)
		return translate(err)
	}

	code.OrderID = order.ID
	code.CreatedAt = now
	code.UpdatedAt = now
	if code.ID.IsZero() {
		code.ID = primitive.NewObjectID()
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll().InsertOne(sessCtx, order); err != nil {
			return nil, err
		}
		if _, err := r.db.Collection(UserDiscountCodeCollection).InsertOne(sessCtx, code); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return translate(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var order models.Order
	if err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// MaxOrderNumber reports the highest order number, and false when no order exists.
func (r *OrderRepository) MaxOrderNumber(ctx context.Context) (int64, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "order_number", Value: -1}}).
		SetProjection(bson.M{"order_number": 1})

	var order models.Order
	err := r.coll().FindOne(ctx, bson.M{}, opts).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return order.OrderNumber, true, nil
}

// Find returns matching orders oldest first.
func (r *OrderRepository) Find(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := r.coll().Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Patch sets the given fields and returns the updated order.
func (r *OrderRepository) Patch(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	for key, value := range fields {
		set[key] = value
	}

	var updated models.Order
	err := r.coll().FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

// Totals sums the charge columns of the matching orders.
func (r *OrderRepository) Totals(ctx context.Context, q OrderQuery) (OrderTotals, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: q.Filter()}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "tips", Value: bson.D{{Key: "$sum", Value: "$tips"}}},
			{Key: "bags", Value: bson.D{{Key: "$sum", Value: "$bags"}}},
			{Key: "service_charge", Value: bson.D{{Key: "$sum", Value: "$service_charge"}}},
			{Key: "delivery_charge", Value: bson.D{{Key: "$sum", Value: "$delivery_charge"}}},
			{Key: "order_total", Value: bson.D{{Key: "$sum", Value: "$order_total"}}},
		}}},
	}

	cursor, err := r.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return OrderTotals{}, err
	}
	defer cursor.Close(ctx)

	var rows []OrderTotals
	if err := cursor.All(ctx, &rows); err != nil {
		return OrderTotals{}, err
	}
	if len(rows) == 0 {
		return OrderTotals{}, nil
	}
	return rows[0], nil
}

// UserIDs returns the distinct owners of the matching orders.
func (r *OrderRepository) UserIDs(ctx context.Context, q OrderQuery) ([]primitive.ObjectID, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	values, err := r.coll().Distinct(ctx, "user_id", q.Filter())
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, value := range values {
		if id, ok := value.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
