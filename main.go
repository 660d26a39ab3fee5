package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"foodorder/internal/config"
	"foodorder/internal/database"
	"foodorder/internal/handlers"
	"foodorder/internal/logging"
	"foodorder/internal/mail"
	"foodorder/internal/middleware"
	"foodorder/internal/orders"
	"foodorder/internal/payment"
	"foodorder/internal/store"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logrus.SetOutput(logger.Out)
	logrus.SetFormatter(logger.Formatter)
	logrus.SetLevel(logger.GetLevel())
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.WithError(err).Fatal("mongo connect failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	db := client.Database(cfg.DBName)
	logger.WithField("db", db.Name()).Info("MongoDB connected")

	if err := database.EnsureIndexes(db, logger); err != nil {
		logger.WithError(err).Warn("index setup incomplete")
	}

	st := store.New(db)

	var mailer mail.Sender = mail.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		logger.Warn("SMTP_HOST not set, emails are only logged")
	}

	svc := orders.NewService(orders.Deps{
		Orders:        st.Orders,
		Sequences:     st.Sequences,
		Facilities:    st.Facilities,
		Gateways:      st.Gateways,
		Items:         st.Items,
		Carts:         st.Carts,
		DiscountCodes: st.DiscountCodes,
		Users:         st.Users,
		Payments: payment.NewProvider(payment.Options{
			StripeCurrency: cfg.StripeCurrency,
			StripeBaseURL:  cfg.StripeBaseURL,
			SquareCurrency: cfg.SquareCurrency,
			SquareBaseURL:  cfg.SquareBaseURL,
		}),
		Mailer: mailer,
		Logger: logger,
	})

	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger), middleware.Timeout(cfg.RequestTimeout))

	handlers.Register(r, handlers.Dependencies{
		Orders:         svc,
		Gateways:       st.Gateways,
		Users:          st.Users,
		DB:             st,
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})

	logger.WithField("port", cfg.Port).Info("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
