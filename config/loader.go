package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file access so loaders can be tested without
// touching the real working directory.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver locates the config and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles holds the file paths a load will read from. Empty fields
// mean the layer is skipped.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when set in opts, otherwise
// searches the standard locations.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	out := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if out.ConfigFile == "" {
		out.ConfigFile = r.findFirst(configSearchPaths(serviceName))
	}
	if out.EnvFile == "" {
		out.EnvFile = r.findFirst(envSearchPaths(serviceName))
	}
	return out
}

func (r *Resolver) findFirst(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configSearchPaths lists config.yml candidates, closest to the binary
// first. A trailing hyphen segment of the service name is also tried so
// "acme-orders" finds cmd/orders/config.yml.
func configSearchPaths(serviceName string) []string {
	names := []string{serviceName}
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 {
		names = append(names, serviceName[idx+1:])
	}
	var paths []string
	for _, prefix := range []string{".", "..", "../.."} {
		for _, n := range names {
			paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", prefix, n))
		}
	}
	paths = append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
	return paths
}

func envSearchPaths(serviceName string) []string {
	var paths []string
	for _, file := range []string{".env." + serviceName, ".env"} {
		for _, prefix := range []string{".", "./config", "..", "../.."} {
			paths = append(paths, prefix+"/"+file)
		}
	}
	return paths
}

// LoaderConfig holds loader dependencies and optional path overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customizes a single load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem substitutes the filesystem, mainly for tests.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile pins the YAML config file path, skipping the search.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile pins the .env file path, skipping the search.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads configuration into a fresh T, applies its defaults, and
// validates it. T must embed ServiceConfig (as a pointer-promoted
// method set), which every injectkit config does.
func Load[T any, PT interface {
	*T
	GetServiceConfig() *ServiceConfig
	ApplyDefaults()
	Validate() error
}](serviceName string, opts ...LoaderOption) (*T, error) {
	cfg := PT(new(T))
	if err := LoadInto(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return (*T)(cfg), nil
}

// LoadInto populates cfg from the layered sources without applying
// defaults or validating. Most callers want Load.
func LoadInto(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(serviceName, lc)
	v := viper.New()

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", files.ConfigFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnviron(v)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", files.EnvFile, err)
		}
		// Rebind to pick up the variables the .env file introduced.
		bindEnviron(v)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", serviceName, err)
	}
	return nil
}

// bindEnviron maps every environment variable onto the viper key space,
// so SERVICE_ENGINE_TRACING overrides engine.tracing in the file layer.
func bindEnviron(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		for _, variant := range keyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// keyVariants converts UPPER_SNAKE env names into the nested key shapes
// a config struct may use: fully flattened, fully nested, and each
// prefix-nested split (ENGINE_RETRY_BACKOFF -> engine.retry_backoff).
func keyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}
	add(lower)
	add(strings.ReplaceAll(lower, "_", "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
