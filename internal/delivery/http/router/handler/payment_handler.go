package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PaymentHandler holds dependencies for payment handlers.
type PaymentHandler struct {
	uc     usecase.PaymentUsecase
	logger *slog.Logger
}

// NewPaymentHandler is the constructor for PaymentHandler, injected by Fx.
func NewPaymentHandler(uc usecase.PaymentUsecase, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, logger: logger}
}

// webhookBody covers both notification shapes the gateway sends.
type webhookBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
	Resource string `json:"resource"`
	Topic    string `json:"topic"`
}

type createSubscriptionRequest struct {
	Reason        string          `json:"reason" validate:"required,max=200"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	FrequencyDays int             `json:"frequencyDays" validate:"required,gte=1"`
	PayerEmail    string          `json:"payerEmail" validate:"required,email"`
}

// CreateCheckout opens a hosted checkout session for an order.
func (h *PaymentHandler) CreateCheckout(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid order id")
	}

	output, err := h.uc.CreateCheckout(c.Request().Context(), &usecase.CheckoutInput{
		UserID:  userID,
		OrderID: orderID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Checkout created successfully")
}

// Webhook receives gateway notifications. It always acknowledges with
// 200 so the gateway does not retry; processing happens asynchronously
// from the outbox.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var body webhookBody
	if err := c.Bind(&body); err != nil {
		h.logger.Warn("Unparseable webhook body", slog.Any("error", err))
	}

	input := &usecase.WebhookInput{
		Type:       body.Type,
		Action:     body.Action,
		DataID:     body.Data.ID,
		Topic:      body.Topic,
		ProviderID: c.QueryParam("id"),
	}
	if input.Type == "" {
		input.Type = c.QueryParam("type")
	}
	if input.Topic == "" {
		input.Topic = c.QueryParam("topic")
	}
	if input.DataID == "" {
		input.DataID = c.QueryParam("data.id")
	}

	if err := h.uc.HandleWebhook(c.Request().Context(), input); err != nil {
		// Log and ack anyway; the event will be recovered by verification.
		h.logger.Error("Webhook intake failed", slog.Any("error", err))
	}

	return c.NoContent(http.StatusOK)
}

// VerifyPayment reconciles an order against the gateway on demand.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	paymentID := c.QueryParam("paymentId")
	if paymentID == "" {
		return response.BadRequest(c, "INVALID_INPUT", "paymentId query parameter is required")
	}

	order, err := h.uc.VerifyPayment(c.Request().Context(), &usecase.VerifyPaymentInput{PaymentID: paymentID})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Payment verified successfully")
}

// GetPayment returns the gateway's view of a payment.
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.uc.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, payment, "Payment retrieved successfully")
}

// PaymentReturn handles the buyer coming back from the hosted checkout.
// The gateway appends payment_id and status query parameters; when a
// payment id is present the order is reconciled immediately instead of
// waiting for the webhook.
func (h *PaymentHandler) PaymentReturn(c echo.Context) error {
	paymentID := c.QueryParam("payment_id")
	status := c.QueryParam("status")

	if paymentID != "" && paymentID != "null" {
		order, err := h.uc.VerifyPayment(c.Request().Context(), &usecase.VerifyPaymentInput{PaymentID: paymentID})
		if err != nil {
			h.logger.Warn("Return reconciliation failed", slog.String("paymentID", paymentID), slog.Any("error", err))
		} else {
			return response.Success(c, http.StatusOK, newOrderView(order), "Payment processed")
		}
	}

	return response.Success(c, http.StatusOK, map[string]string{
		"status":    status,
		"paymentId": paymentID,
	}, "Payment return received")
}

// CreateSubscription opens a recurring charge authorization.
func (h *PaymentHandler) CreateSubscription(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req createSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscription input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	subscription, err := h.uc.CreateSubscription(c.Request().Context(), &usecase.CreateSubscriptionInput{
		UserID:        userID,
		Reason:        req.Reason,
		Amount:        req.Amount,
		FrequencyDays: req.FrequencyDays,
		PayerEmail:    req.PayerEmail,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, subscription, "Subscription created successfully")
}

// GetSubscription returns the gateway's view of a subscription.
func (h *PaymentHandler) GetSubscription(c echo.Context) error {
	subscription, err := h.uc.GetSubscription(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, subscription, "Subscription retrieved successfully")
}

// CancelSubscription cancels a subscription at the gateway.
func (h *PaymentHandler) CancelSubscription(c echo.Context) error {
	subscription, err := h.uc.CancelSubscription(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, subscription, "Subscription cancelled successfully")
}
