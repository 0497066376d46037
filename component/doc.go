// Package component defines lifecycle-managed infrastructure pieces for
// injectkit applications.
//
// A Component is anything that must be started before the container
// serves resolutions and stopped on shutdown: database pools, HTTP
// servers, message consumers. Components register with a Registry, which
// starts them in registration order and stops them in reverse.
//
// # Interfaces
//
//   - Component: lifecycle (Name/Start/Stop/Health)
//   - Describable: startup summary self-description
//   - RouteProvider: HTTP route reporting for the startup summary
package component
