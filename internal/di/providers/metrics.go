package providers

import (
	"github.com/samber/do/v2"

	"github.com/vivilio/vivilio-server/internal/config"
	"github.com/vivilio/vivilio-server/internal/metrics"
)

// MetricsHandle holds the Prometheus registry. Registry is nil when metrics
// are disabled.
type MetricsHandle struct {
	*metrics.Registry
}

// ProvideMetrics provides the metrics registry.
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Metrics.Enabled {
		return &MetricsHandle{}, nil
	}
	return &MetricsHandle{Registry: metrics.New()}, nil
}
