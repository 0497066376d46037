package config

import (
	"time"

	"github.com/skillsenselab/injectkit/logger"
)

// ServiceConfig contains the configuration fields every injectkit
// application needs. Projects extend it by embedding it in their own
// config structs.
//
// Example:
//
//	type OrdersConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Database database.Config `yaml:"database" mapstructure:"database"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Engine      EngineConfig  `yaml:"engine" mapstructure:"engine"`
}

// EngineConfig tunes the dependency-injection engine.
type EngineConfig struct {
	// Tracing enables a span per resolution via the observability package.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics enables resolution counters and histograms.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	// ConstructorRetries is the default attempt count for constructors
	// registered with retry enabled. Zero means a single attempt.
	ConstructorRetries int           `yaml:"constructor_retries" mapstructure:"constructor_retries" validate:"gte=0"`
	RetryBackoff       time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// GetServiceConfig returns the embedded base config. Promoted through
// embedding so any project config satisfies the bootstrap Config
// interface automatically.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults fills unset fields. Embedding structs that override this
// should call ServiceConfig.ApplyDefaults first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	if c.Engine.ConstructorRetries > 0 && c.Engine.RetryBackoff <= 0 {
		c.Engine.RetryBackoff = 100 * time.Millisecond
	}
}

// Validate checks tag constraints plus the nested logging config.
func (c *ServiceConfig) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return err
	}
	return c.Logging.Validate()
}
