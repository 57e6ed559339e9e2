package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_GetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order-1", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":              "order-1",
			"cart_total":      450.0,
			"discount_amount": 50.0,
			"items": []map[string]any{
				{"product_id": "p1", "unit_price": 250.0, "quantity": 2},
			},
			"payments": []map[string]any{
				{"id": "pay-1", "method": "qr_code", "status": "pending", "qr_payload": "PP123"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	order, err := client.GetOrder(context.Background(), "tok-123", "order-1")

	require.NoError(t, err)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 450.0, order.CartTotal)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	require.Len(t, order.Payments, 1)
	assert.Equal(t, domain.PaymentStatusPending, order.Payments[0].Status)
	assert.Equal(t, "PP123", order.Payments[0].QRPayload)
}

func TestClient_CreatePayment_MaskedCardOnly(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]any{
			"id": "pay-9", "method": "credit_card", "status": "completed", "amount": 550.0,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	payment, err := client.CreatePayment(context.Background(), "tok", CreatePaymentRequest{
		OrderID:      "order-1",
		Method:       domain.PaymentMethodCreditCard,
		Amount:       550,
		ShippingFee:  50,
		CardLastFour: "1111",
		CardExpiry:   "12/30",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)

	// The wire payload carries only the masked summary.
	assert.Equal(t, "1111", body["card_last_four"])
	assert.Equal(t, "12/30", body["card_expiry"])
	assert.NotContains(t, body, "number")
	assert.NotContains(t, body, "cvc")
}

func TestClient_BackendErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "order already paid"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	_, err := client.CreatePayment(context.Background(), "tok", CreatePaymentRequest{OrderID: "order-1"})

	require.Error(t, err)
	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnprocessableEntity, be.StatusCode)
	assert.Equal(t, "order already paid", be.Message)
}

func TestClient_UploadSlip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay-1/slip", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		file, header, err := r.FormFile("slip")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "slip.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		json.NewEncoder(w).Encode(map[string]any{
			"id": "pay-1", "method": "qr_code", "status": "pending",
			"slip_url": "https://cdn.example.com/slips/pay-1.png",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, testLogger())
	payment, err := client.UploadSlip(context.Background(), "tok", "pay-1",
		"slip.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/slips/pay-1.png", payment.SlipURL)
}
