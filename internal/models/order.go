package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderTypeDelivery   = "DELIVERY"
	OrderTypeCollection = "COLLECTION"

	StatusInProgress = "InProgress"
	StatusApproved   = "Approved"
	StatusDeclined   = "Declined"
	StatusCancelled  = "Cancelled"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"

	PaymentStatusInProgress = "InProgress"
	PaymentStatusDone       = "Done"

	PaymentTypeCash = "Cash"
	PaymentTypeCard = "Card"

	PanelEcom        = "E-COM"
	PanelMerchandise = "MERCHANDISE"
	PanelCatering    = "CATERING"
)

// OrderItem is one purchased line. Price is the unit price the customer saw.
type OrderItem struct {
	ID       primitive.ObjectID `bson:"id" json:"id"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
}

type OrderAddress struct {
	Address  string `bson:"address,omitempty" json:"address,omitempty"`
	PostCode string `bson:"post_code,omitempty" json:"post_code,omitempty"`
	Mobile   string `bson:"mobile,omitempty" json:"mobile,omitempty"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
}

// OrderDiscount is the discount applied at checkout, e.g. a voucher code.
type OrderDiscount struct {
	Type   string  `bson:"type,omitempty" json:"type,omitempty"`
	Amount float64 `bson:"amount" json:"amount"`
	Code   string  `bson:"code,omitempty" json:"code,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber    int64              `bson:"order_number" json:"order_number"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	ItemDetails    []OrderItem        `bson:"item_details" json:"item_details"`
	OrderType      string             `bson:"order_type,omitempty" json:"order_type,omitempty"`
	Time           string             `bson:"time,omitempty" json:"time,omitempty"`
	Address        *OrderAddress      `bson:"address,omitempty" json:"address,omitempty"`
	Discount       *OrderDiscount     `bson:"discount,omitempty" json:"discount,omitempty"`
	CardID         string             `bson:"card_id,omitempty" json:"card_id,omitempty"`
	CustomerID     string             `bson:"customer_id,omitempty" json:"customer_id,omitempty"`
	TransactionID  string             `bson:"transaction_id,omitempty" json:"transaction_id,omitempty"`
	PaymentGateway string             `bson:"payment_gateway,omitempty" json:"payment_gateway,omitempty"`
	Tips           float64            `bson:"tips" json:"tips"`
	Bags           float64            `bson:"bags" json:"bags"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	ServiceCharge  float64            `bson:"service_charge" json:"service_charge"`
	DeliveryCharge float64            `bson:"delivery_charge" json:"delivery_charge"`
	OrderTotal     float64            `bson:"order_total" json:"order_total"`
	Status         string             `bson:"status" json:"status"`
	PaymentStatus  string             `bson:"payment_status,omitempty" json:"payment_status,omitempty"`
	PaymentType    string             `bson:"payment_type,omitempty" json:"payment_type,omitempty"`
	PanelType      string             `bson:"panel_type" json:"panel_type"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// ItemIDs returns the ordered item ids, duplicates removed, in order of appearance.
func (o *Order) ItemIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(o.ItemDetails))
	ids := make([]primitive.ObjectID, 0, len(o.ItemDetails))
	for _, item := range o.ItemDetails {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}
	return ids
}

// DiscountAmount is zero when no discount was applied.
func (o *Order) DiscountAmount() float64 {
	if o.Discount == nil {
		return 0
	}
	return o.Discount.Amount
}

// OrderOwner is the user summary attached to listed orders.
type OrderOwner struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// OrderWithUser is the list representation of an order.
type OrderWithUser struct {
	Order
	User *OrderOwner `json:"user,omitempty"`
}
