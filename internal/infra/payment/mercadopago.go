// Package payment implements the payment gateway port against the
// MercadoPago REST API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/config"
	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const defaultRequestTimeout = 10 * time.Second

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// mercadoPagoGateway implements service.PaymentGateway over the
// MercadoPago REST API. Access tokens prefixed with "TEST-" hit the
// sandbox automatically; the client code is identical either way.
type mercadoPagoGateway struct {
	baseURL     string
	accessToken string
	currencyID  string
	client      *http.Client
	logger      *slog.Logger
}

// NewMercadoPagoGateway is the constructor for mercadoPagoGateway.
func NewMercadoPagoGateway(params Params) (service.PaymentGateway, error) {
	cfg := params.Config.Payment
	if cfg == nil || cfg.AccessToken == "" {
		return nil, errors.New("payment gateway access token is required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &mercadoPagoGateway{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		currencyID:  cfg.CurrencyID,
		client:      &http.Client{Timeout: timeout},
		logger:      params.Logger,
	}, nil
}

// IsSandbox reports whether the configured credential targets the sandbox.
func (g *mercadoPagoGateway) IsSandbox() bool {
	return strings.HasPrefix(g.accessToken, "TEST-")
}

type preferenceItemPayload struct {
	ID         string          `json:"id,omitempty"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id,omitempty"`
}

type preferencePayload struct {
	Items             []preferenceItemPayload `json:"items"`
	Payer             *payerPayload           `json:"payer,omitempty"`
	ExternalReference string                  `json:"external_reference,omitempty"`
	BackURLs          backURLsPayload         `json:"back_urls"`
	NotificationURL   string                  `json:"notification_url,omitempty"`
	AutoReturn        string                  `json:"auto_return,omitempty"`
}

type payerPayload struct {
	Email string `json:"email"`
}

type backURLsPayload struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type preferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type paymentResponse struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	Payer             struct {
		Email string `json:"email"`
	} `json:"payer"`
}

type subscriptionPayload struct {
	Reason            string `json:"reason"`
	PayerEmail        string `json:"payer_email"`
	ExternalReference string `json:"external_reference,omitempty"`
	BackURL           string `json:"back_url,omitempty"`
	Status            string `json:"status,omitempty"`
	AutoRecurring     struct {
		Frequency         int             `json:"frequency"`
		FrequencyType     string          `json:"frequency_type"`
		TransactionAmount decimal.Decimal `json:"transaction_amount"`
		CurrencyID        string          `json:"currency_id"`
	} `json:"auto_recurring"`
}

type subscriptionResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	InitPoint         string `json:"init_point"`
	ExternalReference string `json:"external_reference"`
}

// CreatePreference opens a hosted checkout session.
func (g *mercadoPagoGateway) CreatePreference(ctx context.Context, req *service.PreferenceRequest) (*service.Preference, error) {
	items := make([]preferenceItemPayload, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, preferenceItemPayload{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			CurrencyID: g.currencyID,
		})
	}

	payload := preferencePayload{
		Items:             items,
		ExternalReference: req.ExternalReference,
		BackURLs: backURLsPayload{
			Success: req.BackURLs.Success,
			Failure: req.BackURLs.Failure,
			Pending: req.BackURLs.Pending,
		},
		NotificationURL: req.NotificationURL,
		AutoReturn:      "approved",
	}
	if req.PayerEmail != "" {
		payload.Payer = &payerPayload{Email: req.PayerEmail}
	}

	var resp preferenceResponse
	if err := g.do(ctx, http.MethodPost, "/checkout/preferences", payload, &resp); err != nil {
		return nil, err
	}

	return &service.Preference{
		ID:               resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

// GetPayment fetches the authoritative payment state by gateway ID.
func (g *mercadoPagoGateway) GetPayment(ctx context.Context, paymentID string) (*service.Payment, error) {
	var resp paymentResponse
	if err := g.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &resp); err != nil {
		return nil, err
	}

	return &service.Payment{
		ID:                resp.ID.String(),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		TransactionAmount: resp.TransactionAmount,
		PayerEmail:        resp.Payer.Email,
	}, nil
}

// CreateSubscription opens a recurring charge authorization.
func (g *mercadoPagoGateway) CreateSubscription(ctx context.Context, req *service.SubscriptionRequest) (*service.Subscription, error) {
	payload := subscriptionPayload{
		Reason:            req.Reason,
		PayerEmail:        req.PayerEmail,
		ExternalReference: req.ExternalReference,
		BackURL:           req.BackURL,
	}
	payload.AutoRecurring.Frequency = req.FrequencyDays
	payload.AutoRecurring.FrequencyType = "days"
	payload.AutoRecurring.TransactionAmount = req.Amount
	payload.AutoRecurring.CurrencyID = req.CurrencyID
	if payload.AutoRecurring.CurrencyID == "" {
		payload.AutoRecurring.CurrencyID = g.currencyID
	}

	var resp subscriptionResponse
	if err := g.do(ctx, http.MethodPost, "/preapproval", payload, &resp); err != nil {
		return nil, err
	}

	return toSubscription(&resp), nil
}

// GetSubscription fetches a subscription by gateway ID.
func (g *mercadoPagoGateway) GetSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	var resp subscriptionResponse
	if err := g.do(ctx, http.MethodGet, "/preapproval/"+subscriptionID, nil, &resp); err != nil {
		return nil, err
	}

	return toSubscription(&resp), nil
}

// CancelSubscription cancels a subscription at the gateway.
func (g *mercadoPagoGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*service.Subscription, error) {
	var resp subscriptionResponse
	payload := map[string]string{"status": "cancelled"}
	if err := g.do(ctx, http.MethodPut, "/preapproval/"+subscriptionID, payload, &resp); err != nil {
		return nil, err
	}

	return toSubscription(&resp), nil
}

func toSubscription(resp *subscriptionResponse) *service.Subscription {
	return &service.Subscription{
		ID:                resp.ID,
		Status:            resp.Status,
		InitPoint:         resp.InitPoint,
		ExternalReference: resp.ExternalReference,
	}
}

// do executes one JSON request against the gateway and decodes the response.
func (g *mercadoPagoGateway) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "marshal gateway request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "build gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "gateway request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if g.logger != nil {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "gateway returned non-2xx",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(detail)),
			)
		}

		return errors.Errorf("gateway returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode gateway response")
	}

	return nil
}
