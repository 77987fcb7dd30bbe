package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/config"
	"storefront/internal/domain/service"
)

func newTestGateway(t *testing.T, handler http.Handler) service.PaymentGateway {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Payment: &config.PaymentConfig{
		BaseURL:        server.URL,
		AccessToken:    "TEST-token",
		RequestTimeout: 2 * time.Second,
		CurrencyID:     "ARS",
	}}

	gateway, err := NewMercadoPagoGateway(Params{Config: cfg, Logger: slog.Default()})
	require.NoError(t, err)

	return gateway
}

func TestNewMercadoPagoGatewayRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewMercadoPagoGateway(Params{Config: &config.Config{}})
	assert.Error(t, err)
}

func TestCreatePreference(t *testing.T) {
	t.Parallel()

	var captured preferencePayload
	gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/preferences", r.URL.Path)
		assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(preferenceResponse{
			ID:               "pref-1",
			InitPoint:        "https://pay.example/init",
			SandboxInitPoint: "https://sandbox.example/init",
		})
	}))

	pref, err := gateway.CreatePreference(t.Context(), &service.PreferenceRequest{
		Items: []service.PreferenceItem{
			{ID: "p1", Title: "Sneakers", Quantity: 2, UnitPrice: decimal.RequireFromString("49.90")},
		},
		PayerEmail:        "buyer@example.com",
		ExternalReference: "order-123",
		BackURLs: service.BackURLs{
			Success: "https://shop.example/api/payments/success",
			Failure: "https://shop.example/api/payments/failure",
			Pending: "https://shop.example/api/payments/pending",
		},
		NotificationURL: "https://shop.example/api/payments/webhook",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", pref.ID)
	assert.Equal(t, "https://pay.example/init", pref.InitPoint)

	assert.Equal(t, "order-123", captured.ExternalReference)
	assert.Equal(t, "approved", captured.AutoReturn)
	require.Len(t, captured.Items, 1)
	assert.Equal(t, "ARS", captured.Items[0].CurrencyID)
	require.NotNil(t, captured.Payer)
	assert.Equal(t, "buyer@example.com", captured.Payer.Email)
}

func TestGetPayment(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		// MercadoPago returns numeric payment IDs.
		_, _ = w.Write([]byte(`{
			"id": 42,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "order-123",
			"transaction_amount": 99.80,
			"payer": {"email": "buyer@example.com"}
		}`))
	}))

	paymentInfo, err := gateway.GetPayment(t.Context(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", paymentInfo.ID)
	assert.Equal(t, "approved", paymentInfo.Status)
	assert.Equal(t, "order-123", paymentInfo.ExternalReference)
	assert.True(t, paymentInfo.TransactionAmount.Equal(decimal.RequireFromString("99.80")))
}

func TestGatewayErrorSurfacesStatus(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))

	_, err := gateway.GetPayment(t.Context(), "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCancelSubscription(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/preapproval/sub-1", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cancelled", body["status"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(subscriptionResponse{ID: "sub-1", Status: "cancelled"})
	}))

	sub, err := gateway.CancelSubscription(t.Context(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", sub.Status)
}
