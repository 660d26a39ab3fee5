package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"foodorder/internal/models"
	"foodorder/internal/payment"
)

type mockPayments struct {
	charger payment.Charger
}

func (p mockPayments) For(*models.PaymentGateway) (payment.Charger, error) {
	return p.charger, nil
}

func TestSquareCheckoutChargesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	charger := NewMockCharger(ctrl)

	f := newFixture()
	f.svc.payments = mockPayments{charger: charger}
	f.store.seedFacility(2000)
	f.store.gateway = &models.PaymentGateway{ID: primitive.NewObjectID(), Type: models.GatewaySquare, SecretKey: "sq"}
	user := f.store.addUser("Grace", "grace@example.com")

	charger.EXPECT().
		Charge(gomock.Any(), payment.ChargeRequest{
			Amount:         135000,
			Token:          "cnon:card-nonce-ok",
			Email:          "grace@example.com",
			OrderNumber:    2000,
			IdempotencyKey: "order-2000",
		}).
		Return(&payment.ChargeResult{CardID: "fp_1", CustomerID: "sq_cus", TransactionID: "sq_pay_1"}, nil).
		Times(1)

	req := cashRequest(primitive.NewObjectID())
	req.PaymentType = models.PaymentTypeCard
	req.TokenID = "cnon:card-nonce-ok"

	order, err := f.svc.Create(context.Background(), Identity{UserID: user.ID, Email: user.Email, Name: user.Name}, req)
	require.NoError(t, err)
	assert.Equal(t, models.GatewaySquare, order.PaymentGateway)
	assert.Equal(t, "sq_pay_1", order.TransactionID)
	assert.Equal(t, models.PaymentStatusInProgress, order.PaymentStatus)
}

func TestCashCheckoutNeverCharges(t *testing.T) {
	ctrl := gomock.NewController(t)
	charger := NewMockCharger(ctrl)
	charger.EXPECT().Charge(gomock.Any(), gomock.Any()).Times(0)

	f := newFixture()
	f.svc.payments = mockPayments{charger: charger}
	f.store.seedFacility(1000)
	f.store.gateway = &models.PaymentGateway{ID: primitive.NewObjectID(), Type: models.GatewayStripe}

	order, err := f.svc.Create(context.Background(), Identity{UserID: primitive.NewObjectID()}, cashRequest(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Empty(t, order.TransactionID)
	assert.Empty(t, order.PaymentGateway)
}
