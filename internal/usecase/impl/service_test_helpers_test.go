package impl

import (
	"io"
	"log/slog"

	"storefront/config"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Payment: &config.PaymentConfig{
			AppURL:     "https://shop.example.com",
			CurrencyID: "ARS",
		},
		Outbox: &config.OutboxConfig{
			MaxAttempts: 3,
		},
	}

	return cfg
}
