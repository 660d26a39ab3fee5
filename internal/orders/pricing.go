package orders

import (
	"github.com/shopspring/decimal"

	"foodorder/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Quote is the priced breakdown of a checkout, in major currency units.
type Quote struct {
	ItemTotal      decimal.Decimal
	Tips           decimal.Decimal
	Bags           decimal.Decimal
	ServiceCharge  decimal.Decimal
	DeliveryCharge decimal.Decimal
	Discount       decimal.Decimal
	Total          decimal.Decimal
}

// PriceOrder sums the item lines and charges and subtracts the discount.
func PriceOrder(req *CreateOrderRequest) Quote {
	itemTotal := decimal.Zero
	for _, line := range req.ItemDetails {
		itemTotal = itemTotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	q := Quote{
		ItemTotal:      itemTotal,
		Tips:           decimal.NewFromFloat(req.Tips),
		Bags:           decimal.NewFromFloat(req.Bags),
		ServiceCharge:  decimal.NewFromFloat(req.ServiceCharge),
		DeliveryCharge: decimal.NewFromFloat(req.DeliveryCharge),
		Discount:       decimal.Zero,
	}
	if req.Discount != nil {
		q.Discount = decimal.NewFromFloat(req.Discount.Amount)
	}

	q.Total = q.ItemTotal.
		Add(q.Tips).
		Add(q.Bags).
		Add(q.ServiceCharge).
		Add(q.DeliveryCharge).
		Sub(q.Discount)
	return q
}

// MinorUnits is the amount charged through a card gateway.
func (q Quote) MinorUnits() int64 {
	return q.Total.Mul(hundred).Round(0).IntPart()
}

func (q Quote) TotalFloat() float64 {
	f, _ := q.Total.Float64()
	return f
}

// formatMoney renders an amount with two decimals for emails and reports.
func formatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

func lineTotal(item models.OrderItem) float64 {
	f, _ := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))).Float64()
	return f
}
