package orders

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/models"
)

// Identity is the verified caller placing an order.
type Identity struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
}

type CreateOrderItem struct {
	ID       primitive.ObjectID `json:"id" binding:"required"`
	Quantity int                `json:"quantity" binding:"required,gt=0"`
	Price    float64            `json:"price" binding:"gte=0"`
}

// CreateOrderDiscount is the discount a checkout claims. Amount is in major
// currency units.
type CreateOrderDiscount struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount" binding:"gte=0"`
	Code   string  `json:"code"`
}

// CreateOrderRequest is the checkout payload. TokenID is the card token
// produced by the payment provider's client SDK.
type CreateOrderRequest struct {
	ItemDetails    []CreateOrderItem    `json:"item_details" binding:"required,min=1,dive"`
	OrderType      string               `json:"order_type" binding:"omitempty,oneof=DELIVERY COLLECTION"`
	Time           string               `json:"time"`
	Address        *models.OrderAddress `json:"address"`
	Discount       *CreateOrderDiscount `json:"discount"`
	Tips           float64              `json:"tips" binding:"gte=0"`
	Bags           float64              `json:"bags" binding:"gte=0"`
	Notes          string               `json:"notes"`
	ServiceCharge  float64              `json:"service_charge" binding:"gte=0"`
	DeliveryCharge float64              `json:"delivery_charge" binding:"gte=0"`
	PaymentType    string               `json:"payment_type" binding:"required,oneof=Cash Card"`
	PaymentStatus  string               `json:"payment_status" binding:"omitempty,oneof=InProgress Done"`
	PanelType      string               `json:"panel_type" binding:"omitempty,oneof=E-COM MERCHANDISE CATERING"`
	TokenID        string               `json:"token_id" binding:"required_if=PaymentType Card"`
}

func (r *CreateOrderRequest) discount() *models.OrderDiscount {
	if r.Discount == nil {
		return nil
	}
	return &models.OrderDiscount{Type: r.Discount.Type, Amount: r.Discount.Amount, Code: r.Discount.Code}
}

func (r *CreateOrderRequest) discountCode() string {
	if r.Discount == nil {
		return ""
	}
	return r.Discount.Code
}

// UpdateOrderRequest only carries the fields present in the request body.
type UpdateOrderRequest struct {
	Status        *string `json:"status" binding:"omitempty,oneof=InProgress Approved Declined Cancelled Shipped Delivered"`
	PaymentStatus *string `json:"payment_status" binding:"omitempty,oneof=InProgress Done"`
	PaymentType   *string `json:"payment_type" binding:"omitempty,oneof=Cash Card"`
	PanelType     *string `json:"panel_type" binding:"omitempty,oneof=E-COM MERCHANDISE CATERING"`
}

// ListFilter selects orders for the listing endpoint. Page is 1-based.
type ListFilter struct {
	UserID      *primitive.ObjectID
	Status      string
	OrderType   string
	PaymentType string
	PanelType   string
	Date        string
	Page        int64
	Limit       int64
}

// StatisticsFilter selects the orders a report covers. ItemID wins over
// CategoryID when both are set.
type StatisticsFilter struct {
	StartDate  string
	EndDate    string
	OrderType  string
	Status     string
	ItemID     *primitive.ObjectID
	CategoryID *primitive.ObjectID
}
