package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/Houeta/scrum-agent/internal/config"
)

// Export hands the gathered metrics of a short-lived agent process to the Pushgateway and to the
// node exporter textfile named in cfg. Targets left empty are skipped.
func Export(ctx context.Context, gatherer prometheus.Gatherer, cfg config.MetricsConfig) error {
	var errs []error

	if cfg.PushgatewayURL != "" {
		if err := push.New(cfg.PushgatewayURL, cfg.Job).Gatherer(gatherer).PushContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to push metrics to %s: %w", cfg.PushgatewayURL, err))
		}
	}

	if cfg.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(cfg.TextfilePath, gatherer); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics to %s: %w", cfg.TextfilePath, err))
		}
	}

	return errors.Join(errs...)
}
