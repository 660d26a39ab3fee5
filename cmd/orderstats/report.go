package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"foodorder/internal/models"
	"foodorder/internal/orders"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func writeSummary(w io.Writer, count orders.StatisticsCount) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")

	rows := [][]string{
		{"Orders", strconv.FormatInt(count.Orders, 10)},
		{"Tips", money(count.Tips)},
		{"Bags", money(count.Bags)},
		{"Service charge", money(count.ServiceCharge)},
		{"Delivery charge", money(count.DeliveryCharge)},
		{"Discount", money(count.Discount)},
		{"Order total", money(count.OrderTotal)},
		{"Card", money(count.Card)},
		{"Cash", money(count.Cash)},
		{"Grand total", money(count.GrandTotal)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeOrders(w io.Writer, list []models.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("Number", "Created", "Type", "Status", "Payment", "Total")

	for _, o := range list {
		row := []string{
			strconv.FormatInt(o.OrderNumber, 10),
			o.CreatedAt.UTC().Format("2006-01-02 15:04"),
			o.OrderType,
			o.Status,
			o.PaymentType,
			money(o.OrderTotal),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeUsers(w io.Writer, users []models.User) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Email")

	for _, u := range users {
		if err := table.Append([]string{u.ID.Hex(), u.Name, u.Email}); err != nil {
			return err
		}
	}
	return table.Render()
}
