package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"foodorder/internal/config"
	"foodorder/internal/database"
	"foodorder/internal/logging"
	"foodorder/internal/mail"
	"foodorder/internal/orders"
	"foodorder/internal/payment"
	"foodorder/internal/store"
)

func main() {
	var (
		start     = flag.String("start", time.Now().UTC().Format("2006-01-02"), "first day of the report (YYYY-MM-DD)")
		end       = flag.String("end", "", "last day of the report, inclusive (defaults to start)")
		orderType = flag.String("type", "", "only DELIVERY or COLLECTION orders")
		status    = flag.String("status", "", "only orders in this status")
		rows      = flag.Bool("orders", true, "print one row per order")
		inactive  = flag.Bool("inactive", false, "also list users without orders in the range")
	)
	flag.Parse()

	config.Load()
	cfg := config.AppEnv
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logger.WithError(err).Fatal("mongo connect failed")
	}
	defer client.Disconnect(context.Background())

	st := store.New(client.Database(cfg.DBName))
	svc := orders.NewService(orders.Deps{
		Orders:        st.Orders,
		Sequences:     st.Sequences,
		Facilities:    st.Facilities,
		Gateways:      st.Gateways,
		Items:         st.Items,
		Carts:         st.Carts,
		DiscountCodes: st.DiscountCodes,
		Users:         st.Users,
		Payments:      payment.NewProvider(payment.Options{}),
		Mailer:        mail.NewLogSender(logger),
		Logger:        logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stats, err := svc.OrderStatistics(ctx, orders.StatisticsFilter{
		StartDate: *start,
		EndDate:   *end,
		OrderType: *orderType,
		Status:    *status,
	})
	if err != nil {
		logger.WithError(err).Fatal("statistics failed")
	}

	if err := writeSummary(os.Stdout, stats.Count); err != nil {
		logger.WithError(err).Fatal("render failed")
	}
	if *rows && len(stats.Data) > 0 {
		if err := writeOrders(os.Stdout, stats.Data); err != nil {
			logger.WithError(err).Fatal("render failed")
		}
	}

	if *inactive {
		users, err := svc.InactiveUsers(ctx, *start, *end)
		if err != nil {
			logger.WithError(err).Fatal("user statistics failed")
		}
		logger.WithFields(logrus.Fields{"users": len(users)}).Info("users without orders")
		if err := writeUsers(os.Stdout, users); err != nil {
			logger.WithError(err).Fatal("render failed")
		}
	}
}
