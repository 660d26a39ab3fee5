package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe creates a customer, attaches the card's payment method to it and
// confirms a payment intent.
type Stripe struct {
	api      *client.API
	currency string
}

func NewStripe(secretKey, currency, baseURL string) *Stripe {
	return &Stripe{
		api:      client.New(secretKey, stripeBackends(baseURL)),
		currency: currency,
	}
}

func stripeBackends(baseURL string) *stripe.Backends {
	apiConfig := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	uploadsConfig := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	connectConfig := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	if baseURL != "" {
		apiConfig.URL = stripe.String(baseURL)
		uploadsConfig.URL = stripe.String(baseURL)
		connectConfig.URL = stripe.String(baseURL)
	}
	return &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, apiConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, connectConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, uploadsConfig),
	}
}

func (s *Stripe) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	customerParams := &stripe.CustomerParams{Email: stripe.String(req.Email)}
	customerParams.Context = ctx
	customer, err := s.api.Customers.New(customerParams)
	if err != nil {
		return nil, fmt.Errorf("create stripe customer: %w", err)
	}

	attachParams := &stripe.PaymentMethodAttachParams{Customer: stripe.String(customer.ID)}
	attachParams.Context = ctx
	method, err := s.api.PaymentMethods.Attach(req.Token, attachParams)
	if err != nil {
		return nil, fmt.Errorf("attach card to stripe customer: %w", err)
	}

	orderNumber := strconv.FormatInt(req.OrderNumber, 10)
	intentParams := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(s.currency),
		Customer:           stripe.String(customer.ID),
		PaymentMethod:      stripe.String(method.ID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		TransferGroup:      stripe.String(orderNumber),
		Description:        stripe.String("Charge for " + orderNumber),
	}
	intentParams.Context = ctx
	if req.IdempotencyKey != "" {
		intentParams.SetIdempotencyKey(req.IdempotencyKey)
	}
	intent, err := s.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, fmt.Errorf("confirm stripe payment intent: %w", err)
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
	default:
		return nil, fmt.Errorf("stripe payment intent %s ended in status %s", intent.ID, intent.Status)
	}

	return &ChargeResult{
		CardID:        method.ID,
		CustomerID:    customer.ID,
		TransactionID: intent.ID,
	}, nil
}
