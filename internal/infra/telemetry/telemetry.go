package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/workflow-resolution/internal/infra/config"
)

// Provider represents a telemetry provider handle. HTTP request metrics are
// owned by the transport middleware; the provider carries the domain-level
// resolution counters.
type Provider struct {
	resolutionCounter *prometheus.CounterVec
}

// Attach configures telemetry collectors and returns a provider handle.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	resolutions := promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workflow",
		Name:      "assignee_resolutions_total",
		Help:      "Assignee resolutions by strategy and outcome",
	}, []string{"strategy", "outcome"})

	return &Provider{
		resolutionCounter: resolutions,
	}, nil
}

// ResolutionCounter exposes the per-strategy resolution outcome metric.
func (p *Provider) ResolutionCounter() *prometheus.CounterVec {
	if p == nil {
		return prometheus.NewCounterVec(prometheus.CounterOpts{}, []string{"strategy", "outcome"})
	}
	return p.resolutionCounter
}
