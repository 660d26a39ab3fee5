package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FacilityBag            = "BAG"
	FacilityTip            = "TIP"
	FacilityOrderNumber    = "ORDER_NUMBER"
	FacilityGiftCardNumber = "GIFT_CARD_NUMBER"
)

// CheckoutFacility is a configured checkout value, e.g. the starting order number.
type CheckoutFacility struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Type      string             `bson:"type" json:"type"`
	Value     float64            `bson:"value" json:"value"`
	IsDeleted bool               `bson:"is_deleted" json:"is_deleted"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Cart is one pending purchase of an item by a user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	ItemID    primitive.ObjectID `bson:"item_id" json:"item_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UserDiscountCode records that a user spent a discount code on an order.
type UserDiscountCode struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrderID   primitive.ObjectID `bson:"order_id" json:"order_id"`
	Code      string             `bson:"code" json:"code"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
