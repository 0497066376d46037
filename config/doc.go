// Package config loads and validates application configuration for
// injectkit services.
//
// Configuration comes from three layers, later layers overriding earlier
// ones: a YAML file found in standard locations, a .env file, and process
// environment variables. Structs are validated with struct tags after
// loading.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    DatabaseURL string `yaml:"database_url" mapstructure:"database_url" validate:"required,url"`
//	}
//
//	cfg, err := config.Load[AppConfig]("orders-service")
package config
