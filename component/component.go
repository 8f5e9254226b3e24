package component

import "context"

// HealthStatus is the state reported by Health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a long-lived resource owned by a Registry.
type Component interface {
	// Name must be unique within a Registry.
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description summarises a component for startup logs.
type Description struct {
	Type    string
	Details string
}

// Describable is implemented by components that can summarise their
// configuration.
type Describable interface {
	Describe() Description
}

// Overall folds reports into one status: unhealthy wins over degraded,
// degraded over healthy.
func Overall(reports []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range reports {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
