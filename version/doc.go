// Package version provides build version information embedding for
// injectkit applications.
//
// Version, git commit, and build time are set at compile time via
// -ldflags, with VCS build info as a fallback:
//
//	go build -ldflags "-X github.com/skillsenselab/injectkit/version.Version=1.0.0"
package version
