package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GatewayStripe = "STRIPE"
	GatewaySquare = "SQUARE"
	GatewayPaypal = "PAYPAL"
)

// PaymentGateway stores the credentials of one payment provider account.
type PaymentGateway struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"`
	ClientID  string             `bson:"client_id,omitempty" json:"client_id,omitempty"`
	SecretKey string             `bson:"secret_key" json:"-"`
	IsTest    bool               `bson:"is_test" json:"is_test"`
	IsDeleted bool               `bson:"is_deleted" json:"is_deleted"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ActiveGatewaySetting points at the gateway used for card checkouts.
type ActiveGatewaySetting struct {
	ID        string             `bson:"_id" json:"id"`
	GatewayID primitive.ObjectID `bson:"gateway_id" json:"gateway_id"`
	UpdatedBy primitive.ObjectID `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
