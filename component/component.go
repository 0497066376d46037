package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed infrastructure piece.
type Component interface {
	// Name returns the unique registration name.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts the component down and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status.
	Health(ctx context.Context) Health
}

// Description is a component's self-report for the startup summary.
type Description struct {
	// Name is the display name; the component's Name() when empty.
	Name string
	// Type categorizes the component: "server", "database", "engine".
	Type string
	// Details is a one-line configuration summary, e.g. ":8080 routes=12".
	Details string
	// Port is the primary listen port, 0 when not applicable.
	Port int
}

// Describable is optionally implemented by components that want a line
// in the startup summary's infrastructure section.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route for the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is optionally implemented by server components to report
// their registered routes.
type RouteProvider interface {
	Routes() []Route
}
