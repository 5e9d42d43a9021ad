package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/order"
)

// ContactMessage is the payload of a contact.received event.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message" validate:"required"`
}

// EmailNotifier turns domain events into e-mails for the sales inbox and the
// customer. Delivery problems are reported to the bus, which logs and moves
// on; notifications never fail an order.
type EmailNotifier struct {
	Mail       common.EmailSender
	Enabled    bool
	SalesEmail string
	Currency   string
	Log        *zerolog.Logger
	Failures   prometheus.Counter
}

// Notify implements events.Notifier.
func (n *EmailNotifier) Notify(ctx context.Context, ev events.Event) error {
	if n == nil || !n.Enabled || n.Mail == nil {
		return nil
	}
	var err error
	switch ev.Topic {
	case events.TopicOrderCreated, events.TopicOrderPaid:
		if ord, ok := ev.Payload.(order.Order); ok {
			err = n.sendOrder(ord, ev.Topic)
		}
	case events.TopicOrderCancelled:
		if ord, ok := ev.Payload.(order.Order); ok {
			err = n.Mail.Send(n.SalesEmail,
				fmt.Sprintf("Order %s cancelled", ord.ID),
				fmt.Sprintf("<p>Order <b>%s</b> for %s was cancelled.</p>",
					html.EscapeString(ord.ID), html.EscapeString(ord.Customer.Name)))
		}
	case events.TopicContactReceived:
		if msg, ok := ev.Payload.(ContactMessage); ok {
			err = n.sendContact(msg)
		}
	}
	if err != nil {
		if n.Failures != nil {
			n.Failures.Inc()
		}
		if n.Log != nil {
			n.Log.Warn().Err(err).Str("topic", ev.Topic).Msg("email notification failed")
		}
	}
	return err
}

func (n *EmailNotifier) sendOrder(ord order.Order, topic string) error {
	subject := fmt.Sprintf("New order %s", ord.ID)
	if topic == events.TopicOrderPaid {
		subject = fmt.Sprintf("Order %s paid", ord.ID)
	}
	body := n.renderOrder(ord)

	if err := n.Mail.Send(n.SalesEmail, subject, body); err != nil {
		return err
	}
	if ord.Customer.Email != "" {
		confirm := fmt.Sprintf("Your order %s", ord.ID)
		return n.Mail.Send(ord.Customer.Email, confirm, body)
	}
	return nil
}

func (n *EmailNotifier) renderOrder(ord order.Order) string {
	cur := n.Currency
	if cur == "" {
		cur = "USD"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Order %s</h2>", html.EscapeString(ord.ID))
	fmt.Fprintf(&b, "<p>%s &lt;%s&gt;, %s<br>%s, %s, %s</p>",
		html.EscapeString(ord.Customer.Name),
		html.EscapeString(ord.Customer.Email),
		html.EscapeString(ord.Customer.Phone),
		html.EscapeString(ord.Customer.Address),
		html.EscapeString(ord.Customer.City),
		html.EscapeString(ord.Customer.Country))

	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Product</th><th>Specs</th><th>Qty</th><th>Unit</th><th>Total</th></tr>")
	for _, item := range ord.Items {
		specs := make([]string, 0, len(item.Specifications))
		for k, v := range item.Specifications {
			specs = append(specs, fmt.Sprintf("%s: %s", html.EscapeString(k), html.EscapeString(v)))
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%.2f</td><td>%.2f</td></tr>",
			html.EscapeString(item.ProductName),
			strings.Join(specs, ", "),
			item.Quantity,
			item.FinalUnitPrice,
			item.LineTotal)
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p>Subtotal: %.2f %s<br>Shipping (%.1f kg): %.2f %s<br><b>Total: %.2f %s</b></p>",
		ord.Subtotal, cur, ord.TotalWeightKg, ord.ShippingCost, cur, ord.Total, cur)
	fmt.Fprintf(&b, "<p>Payment: %s (%s)</p>",
		html.EscapeString(ord.Payment.Method), html.EscapeString(ord.Payment.Status))
	return b.String()
}

func (n *EmailNotifier) sendContact(msg ContactMessage) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Contact request from %s</h2>", html.EscapeString(msg.Name))
	fmt.Fprintf(&b, "<p>Email: %s<br>Phone: %s<br>Company: %s</p>",
		html.EscapeString(msg.Email), html.EscapeString(msg.Phone), html.EscapeString(msg.Company))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(msg.Message))
	return n.Mail.Send(n.SalesEmail, fmt.Sprintf("Contact request from %s", msg.Name), b.String())
}
