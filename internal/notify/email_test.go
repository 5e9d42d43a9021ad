package notify_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/common"
	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/notify"
	"github.com/qualclamps/storefront/internal/order"
)

func sampleOrder() order.Order {
	return order.Order{
		ID:     "ORD-1",
		Status: order.StatusPending,
		Customer: order.CustomerInfo{
			Name: "Asha Rao", Email: "asha@example.com", Phone: "1",
			Address: "14 Ring Rd", City: "Pune", Country: "India",
		},
		Items: []order.Item{{
			ProductName: "Heavy Duty Clamp", Quantity: 600,
			Specifications: map[string]string{"Size": "Large"},
			FinalUnitPrice: 9.00, LineTotal: 5400.00,
		}},
		Subtotal: 5400.00, ShippingCost: 2470.80, Total: 7870.80, TotalWeightKg: 600,
		Payment: order.PaymentInfo{Method: "cod", Status: "pending"},
	}
}

func TestOrderCreatedSendsToSalesAndCustomer(t *testing.T) {
	t.Parallel()
	mail := &common.InMemoryEmail{}
	n := &notify.EmailNotifier{Mail: mail, Enabled: true, SalesEmail: "sales@example.com", Currency: "USD"}

	require.NoError(t, n.Notify(context.Background(), events.Event{
		Topic:   events.TopicOrderCreated,
		Payload: sampleOrder(),
	}))

	require.Len(t, mail.Outbox, 2)
	require.Equal(t, "sales@example.com", mail.Outbox[0].To)
	require.Equal(t, "asha@example.com", mail.Outbox[1].To)
	require.Contains(t, mail.Outbox[0].HTML, "Heavy Duty Clamp")
	require.Contains(t, mail.Outbox[0].HTML, "7870.80 USD")
	require.Contains(t, mail.Outbox[0].Subject, "ORD-1")
}

func TestDisabledNotifierStaysQuiet(t *testing.T) {
	t.Parallel()
	mail := &common.InMemoryEmail{}
	n := &notify.EmailNotifier{Mail: mail, Enabled: false, SalesEmail: "sales@example.com"}

	require.NoError(t, n.Notify(context.Background(), events.Event{
		Topic:   events.TopicOrderCreated,
		Payload: sampleOrder(),
	}))
	require.Empty(t, mail.Outbox)
}

func TestContactHandlerEmits(t *testing.T) {
	t.Parallel()
	mail := &common.InMemoryEmail{}
	n := &notify.EmailNotifier{Mail: mail, Enabled: true, SalesEmail: "sales@example.com"}
	h := notify.Handlers{
		Bus:      &events.Bus{Notifiers: []events.Notifier{n}},
		Validate: validator.New(),
	}

	body := `{"name":"Asha","email":"asha@example.com","message":"Need 2000 clamps"}`
	rec := httptest.NewRecorder()
	h.Contact(rec, httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, mail.Outbox, 1)
	require.Contains(t, mail.Outbox[0].HTML, "Need 2000 clamps")
}

func TestContactHandlerValidates(t *testing.T) {
	t.Parallel()
	h := notify.Handlers{Bus: &events.Bus{}, Validate: validator.New()}

	rec := httptest.NewRecorder()
	h.Contact(rec, httptest.NewRequest(http.MethodPost, "/contact", bytes.NewBufferString(`{"name":"Asha"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
