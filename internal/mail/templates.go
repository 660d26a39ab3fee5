package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"foodorder/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PlacedLine is one itemized row of the order confirmation.
type PlacedLine struct {
	Name     string
	Image    string
	Quantity int
	Price    string
}

// OrderPlaced is the data of the order confirmation email. Amounts are
// preformatted in major currency units.
type OrderPlaced struct {
	Name           string
	Email          string
	OrderNumber    int64
	Lines          []PlacedLine
	Subtotal       string
	Discount       string
	Bags           string
	Tips           string
	ServiceCharge  string
	DeliveryCharge string
	Total          string
	Address        string
	PostCode       string
	Mobile         string
}

func RenderOrderPlaced(data OrderPlaced) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "order_placed.html", data); err != nil {
		return Message{}, fmt.Errorf("render order placed mail: %w", err)
	}
	return Message{
		To:      data.Email,
		Subject: "You placed an order!",
		HTML:    buf.String(),
	}, nil
}

type statusMail struct {
	subject  string
	headline string
}

var statusMails = map[string]statusMail{
	models.StatusApproved: {
		subject:  "Congrats! Your order has been accepted!",
		headline: "Good news, the restaurant has accepted your order.",
	},
	models.StatusCancelled: {
		subject:  "Your order has been cancelled",
		headline: "Your order has been cancelled. Contact us if this is unexpected.",
	},
	models.StatusDelivered: {
		subject:  "Your order has been delivered",
		headline: "Your order has been delivered. Enjoy your meal!",
	},
}

// NotifiesStatus reports whether moving an order to status emails its owner.
func NotifiesStatus(status string) bool {
	_, ok := statusMails[status]
	return ok
}

// RenderOrderStatus builds the status email; ok is false for statuses that
// send no mail.
func RenderOrderStatus(status string, user *models.User, orderNumber int64) (msg Message, ok bool, err error) {
	mail, ok := statusMails[status]
	if !ok {
		return Message{}, false, nil
	}

	var buf bytes.Buffer
	err = templates.ExecuteTemplate(&buf, "order_status.html", map[string]any{
		"Name":        user.Name,
		"Headline":    mail.headline,
		"OrderNumber": orderNumber,
	})
	if err != nil {
		return Message{}, true, fmt.Errorf("render order status mail: %w", err)
	}
	return Message{To: user.Email, Subject: mail.subject, HTML: buf.String()}, true, nil
}
