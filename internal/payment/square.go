package payment

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	square "github.com/square/square-go-sdk"
	squareclient "github.com/square/square-go-sdk/client"
	"github.com/square/square-go-sdk/option"
)

var (
	SquareSandboxURL    = square.Environments.Sandbox
	SquareProductionURL = square.Environments.Production
)

// Square charges the card nonce through the Payments API in one call.
type Square struct {
	api      *squareclient.Client
	currency string
	baseURL  string
}

func NewSquare(accessToken, currency, baseURL string, httpClient *http.Client) *Square {
	baseURL = strings.TrimRight(baseURL, "/")
	opts := []option.RequestOption{
		option.WithToken(accessToken),
		option.WithBaseURL(baseURL),
		option.WithMaxAttempts(1),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Square{
		api:      squareclient.NewClient(opts...),
		currency: currency,
		baseURL:  baseURL,
	}
}

func (s *Square) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	currency := square.Currency(s.currency)
	resp, err := s.api.Payments.Create(ctx, &square.CreatePaymentRequest{
		SourceID:       req.Token,
		IdempotencyKey: key,
		AmountMoney: &square.Money{
			Amount:   square.Int64(req.Amount),
			Currency: &currency,
		},
		ReferenceID:       square.String(strconv.FormatInt(req.OrderNumber, 10)),
		BuyerEmailAddress: optionalString(req.Email),
		Autocomplete:      square.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create square payment: %w", err)
	}
	if len(resp.Errors) > 0 && resp.Errors[0] != nil {
		first := resp.Errors[0]
		return nil, fmt.Errorf("square payment failed: %s %s: %s", first.Category, first.Code, deref(first.Detail))
	}

	payment := resp.Payment
	if payment == nil || deref(payment.ID) == "" {
		return nil, fmt.Errorf("square response carried no payment")
	}
	status := deref(payment.Status)
	if status == "FAILED" || status == "CANCELED" {
		return nil, fmt.Errorf("square payment %s ended in status %s", deref(payment.ID), status)
	}

	result := &ChargeResult{
		CustomerID:    deref(payment.CustomerID),
		TransactionID: deref(payment.ID),
	}
	if details := payment.CardDetails; details != nil && details.Card != nil {
		result.CardID = deref(details.Card.ID)
		if result.CardID == "" {
			result.CardID = deref(details.Card.Fingerprint)
		}
	}
	return result, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
