// Package payment charges cards through the configured payment provider.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"foodorder/internal/models"
)

// ChargeRequest is one card payment. Amount is in minor currency units.
type ChargeRequest struct {
	Amount         int64
	Token          string
	Email          string
	OrderNumber    int64
	IdempotencyKey string
}

// ChargeResult carries the provider references stored on the order.
type ChargeResult struct {
	CardID        string
	CustomerID    string
	TransactionID string
}

type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// Options configures the provider clients built by Provider.
type Options struct {
	StripeCurrency string
	StripeBaseURL  string
	SquareCurrency string
	SquareBaseURL  string
	HTTPClient     *http.Client
}

// Provider builds a Charger from the credentials of a stored gateway.
type Provider struct {
	opts Options
}

func NewProvider(opts Options) *Provider {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.StripeCurrency == "" {
		opts.StripeCurrency = "gbp"
	}
	if opts.SquareCurrency == "" {
		opts.SquareCurrency = "GBP"
	}
	return &Provider{opts: opts}
}

// Supported reports whether checkout can charge through the gateway type.
func Supported(gatewayType string) bool {
	return gatewayType == models.GatewayStripe || gatewayType == models.GatewaySquare
}

func (p *Provider) For(gateway *models.PaymentGateway) (Charger, error) {
	switch gateway.Type {
	case models.GatewayStripe:
		return NewStripe(gateway.SecretKey, p.opts.StripeCurrency, p.opts.StripeBaseURL), nil
	case models.GatewaySquare:
		baseURL := p.opts.SquareBaseURL
		if baseURL == "" {
			baseURL = SquareProductionURL
			if gateway.IsTest {
				baseURL = SquareSandboxURL
			}
		}
		return NewSquare(gateway.SecretKey, p.opts.SquareCurrency, baseURL, p.opts.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unsupported payment gateway %q", gateway.Type)
	}
}
