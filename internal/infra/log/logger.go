// Package logs builds the process-wide slog logger shared by the api
// and worker binaries.
package logs

import (
	"log/slog"
	"os"
	"strings"

	"storefront/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for New, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
}

// New builds the root logger. Pretty text output is meant for local
// development; everything else emits JSON. Every line carries the
// service name so the two binaries stay distinguishable in a shared
// log sink.
func New(params Params) (*slog.Logger, error) {
	level, err := parseLevel(params.Config.Env.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if params.Config.Env.Log.Pretty {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if name := params.Config.Env.ServiceName; name != "" {
		logger = logger.With(slog.String("service", name))
	}

	return logger, nil
}

// parseLevel maps the configured level string to slog. An empty value
// defaults to info so a minimal config still boots.
func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level: %s", raw)
	}
}
