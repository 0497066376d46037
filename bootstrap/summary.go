package bootstrap

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skillsenselab/injectkit/component"
	"github.com/skillsenselab/injectkit/di"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
}

// NewSummary creates a bootstrap summary for the service.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the startup summary: infrastructure from Describable
// components, registered services from the container grouped by
// lifecycle, HTTP routes from RouteProvider components, and live health.
func (s *Summary) Display(registry *component.Registry, container *di.Container) {
	fmt.Printf("\n")
	fmt.Printf("🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	s.displayInfrastructure(registry)
	s.displayServices(container)
	s.displayRoutes(registry)
	s.displayHealth(registry)

	fmt.Printf("\n")
}

func (s *Summary) displayInfrastructure(registry *component.Registry) {
	if registry == nil {
		return
	}
	components := registry.All()
	if len(components) == 0 {
		fmt.Printf("📊 Infrastructure\n   └── none registered\n\n")
		return
	}

	fmt.Printf("📊 Infrastructure\n")
	for i, c := range components {
		prefix := "├──"
		if i == len(components)-1 {
			prefix = "└──"
		}
		name, details := c.Name(), ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				name = desc.Name
			}
			details = desc.Details
			if desc.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, desc.Port)
			}
		}
		if details != "" {
			fmt.Printf("   %s %s: %s\n", prefix, name, details)
		} else {
			fmt.Printf("   %s %s\n", prefix, name)
		}
	}
	fmt.Printf("\n")
}

func (s *Summary) displayServices(container *di.Container) {
	if container == nil {
		return
	}
	infos := container.Registrations()
	if len(infos) == 0 {
		return
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Lifecycle != infos[j].Lifecycle {
			return infos[i].Lifecycle < infos[j].Lifecycle
		}
		return infos[i].Key.String() < infos[j].Key.String()
	})

	fmt.Printf("🧩 Services (%d)\n", len(infos))
	for i, info := range infos {
		prefix := "├──"
		if i == len(infos)-1 {
			prefix = "└──"
		}
		icon := lifecycleIcon(info.Lifecycle)
		note := ""
		if info.Cached {
			note = " [cached]"
		}
		fmt.Printf("   %s %s %s (%s)%s\n", prefix, icon, info.Key, info.Lifecycle, note)
	}
	fmt.Printf("\n")
}

func (s *Summary) displayRoutes(registry *component.Registry) {
	if registry == nil {
		return
	}
	var routes []component.Route
	for _, c := range registry.All() {
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	if len(routes) == 0 {
		return
	}

	fmt.Printf("🌐 Routes (%d)\n", len(routes))
	for i, r := range routes {
		prefix := "├──"
		if i == len(routes)-1 {
			prefix = "└──"
		}
		fmt.Printf("   %s %-7s %s → %s\n", prefix, r.Method, r.Path, r.Handler)
	}
	fmt.Printf("\n")
}

func (s *Summary) displayHealth(registry *component.Registry) {
	if registry == nil {
		return
	}
	results := registry.HealthAll(context.Background())
	if len(results) == 0 {
		return
	}

	fmt.Printf("🏥 Health\n")
	for i, h := range results {
		prefix := "├──"
		if i == len(results)-1 {
			prefix = "└──"
		}
		msg := ""
		if h.Message != "" {
			msg = fmt.Sprintf(" — %s", h.Message)
		}
		fmt.Printf("   %s %s %s: %s%s\n",
			prefix, healthIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
	}
}

func lifecycleIcon(lc di.Lifecycle) string {
	switch lc {
	case di.LifecycleSingleton:
		return "♻️"
	case di.LifecycleScoped:
		return "📦"
	case di.LifecycleTransient:
		return "⚡"
	default:
		return "❓"
	}
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
