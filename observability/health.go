package observability

import (
	"context"

	"github.com/skillsenselab/injectkit/component"
)

// HealthStatus represents the health state of a service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// ServiceHealth is the aggregate health of a service and its components,
// shaped for a health endpoint response.
type ServiceHealth struct {
	Service    string             `json:"service"`
	Status     HealthStatus       `json:"status"`
	Version    string             `json:"version,omitempty"`
	Components []component.Health `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent folds a component's health into the aggregate: any
// unhealthy component takes the service down, any degraded one marks it
// degraded unless it is already down.
func (sh *ServiceHealth) AddComponent(ch component.Health) {
	sh.Components = append(sh.Components, ch)
	switch ch.Status {
	case component.StatusUnhealthy:
		sh.Status = HealthStatusDown
	case component.StatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// CollectHealth aggregates every component in the registry.
func CollectHealth(ctx context.Context, service, version string, reg *component.Registry) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	for _, ch := range reg.HealthAll(ctx) {
		sh.AddComponent(ch)
	}
	return sh
}
