package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/middleware"
	"foodorder/internal/models"
	"foodorder/internal/store"
)

type GatewayStore interface {
	List(ctx context.Context) ([]models.PaymentGateway, error)
	Insert(ctx context.Context, gateway *models.PaymentGateway) error
	Activate(ctx context.Context, id, by primitive.ObjectID) (*models.PaymentGateway, error)
	Active(ctx context.Context) (*models.PaymentGateway, error)
}

type CreateGatewayRequest struct {
	Type      string `json:"type" binding:"required,oneof=STRIPE SQUARE PAYPAL"`
	ClientID  string `json:"client_id"`
	SecretKey string `json:"secret_key" binding:"required"`
	IsTest    bool   `json:"is_test"`
}

func GetPaymentGateways(gateways GatewayStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment-gateways"
		defer handlePanic(c, route)

		list, err := gateways.List(c.Request.Context())
		if err != nil {
			logrus.WithField("area", "GATEWAY").WithError(err).Error("list failed")
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if len(list) == 0 {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, list)
	}
}

func CreatePaymentGateway(gateways GatewayStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payment-gateways"
		defer handlePanic(c, route)

		var req CreateGatewayRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		gateway := &models.PaymentGateway{
			Type:      req.Type,
			ClientID:  req.ClientID,
			SecretKey: req.SecretKey,
			IsTest:    req.IsTest,
		}
		if caller, ok := middleware.CallerFrom(c); ok {
			gateway.CreatedBy = caller.UserID
		}

		if err := gateways.Insert(c.Request.Context(), gateway); err != nil {
			logrus.WithField("area", "GATEWAY").WithError(err).Error("insert failed")
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gateway)
	}
}

func ActivatePaymentGateway(gateways GatewayStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /payment-gateways/:id/activate"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var by primitive.ObjectID
		if caller, ok := middleware.CallerFrom(c); ok {
			by = caller.UserID
		}

		gateway, err := gateways.Activate(c.Request.Context(), id, by)
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "payment gateway not found")
			return
		}
		if err != nil {
			logrus.WithField("area", "GATEWAY").WithError(err).Error("activate failed")
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		logrus.WithField("area", "GATEWAY").WithFields(logrus.Fields{"id": gateway.ID.Hex(), "type": gateway.Type}).Info("payment gateway activated")
		c.JSON(http.StatusOK, gateway)
	}
}

func GetActivePaymentGateway(gateways GatewayStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment-gateways/active"
		defer handlePanic(c, route)

		gateway, err := gateways.Active(c.Request.Context())
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(c, http.StatusNotFound, route, "no active payment gateway")
			return
		}
		if err != nil {
			logrus.WithField("area", "GATEWAY").WithError(err).Error("active lookup failed")
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gateway)
	}
}
