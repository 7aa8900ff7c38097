package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/nrfta/admin-go"
)

// Backend names accepted by ADMIN_BACKEND.
const (
	BackendGraphQL = "graphql"
	BackendREST    = "rest"
)

type Config struct {
	Env     string `mapstructure:"ADMIN_ENV"`
	Backend string `mapstructure:"ADMIN_BACKEND"`

	GraphQL GraphQLConfig `mapstructure:",squash"`
	REST    RESTConfig    `mapstructure:",squash"`
	HTTP    HTTPConfig    `mapstructure:",squash"`
	List    ListConfig    `mapstructure:",squash"`

	// Resources maps resource names to backend type names,
	// from ADMIN_RESOURCES="posts=Post,users=User".
	Resources map[string]string `mapstructure:"-"`
}

type GraphQLConfig struct {
	URL string `mapstructure:"ADMIN_GRAPHQL_URL"`
}

type RESTConfig struct {
	URL string `mapstructure:"ADMIN_REST_URL"`
}

type HTTPConfig struct {
	Timeout      time.Duration `mapstructure:"ADMIN_HTTP_TIMEOUT"`
	RetryMax     int           `mapstructure:"ADMIN_RETRY_MAX"`
	RetryWaitMin time.Duration `mapstructure:"ADMIN_RETRY_WAIT_MIN"`
	RetryWaitMax time.Duration `mapstructure:"ADMIN_RETRY_WAIT_MAX"`
	AuthToken    string        `mapstructure:"ADMIN_AUTH_TOKEN"`
}

type ListConfig struct {
	DefaultPerPage int `mapstructure:"ADMIN_DEFAULT_PER_PAGE"`
	MaxPerPage     int `mapstructure:"ADMIN_MAX_PER_PAGE"`
}

func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = gotenv.Load(".env") // variables already set take precedence
	}
}

// Load reads the configuration from the environment and an optional .env
// file in the working directory.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADMIN_ENV", "dev")
	v.SetDefault("ADMIN_BACKEND", BackendGraphQL)
	v.SetDefault("ADMIN_GRAPHQL_URL", "http://localhost:4000/graphql")
	v.SetDefault("ADMIN_REST_URL", "http://localhost:3000")
	v.SetDefault("ADMIN_HTTP_TIMEOUT", "10s")
	v.SetDefault("ADMIN_RETRY_MAX", 2)
	v.SetDefault("ADMIN_RETRY_WAIT_MIN", "200ms")
	v.SetDefault("ADMIN_RETRY_WAIT_MAX", "2s")
	v.SetDefault("ADMIN_AUTH_TOKEN", "")
	v.SetDefault("ADMIN_DEFAULT_PER_PAGE", admin.DefaultPerPage)
	v.SetDefault("ADMIN_MAX_PER_PAGE", admin.DefaultMaxPerPage)
	v.SetDefault("ADMIN_RESOURCES", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resources, err := parseResources(v.GetString("ADMIN_RESOURCES"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_RESOURCES: %w", err)
	}
	cfg.Resources = resources

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseResources reads "posts=Post,users=User". A bare name maps to the
// empty type name, derived from the resource name when the provider is built.
func parseResources(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, typeName, _ := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty resource name in %q", entry)
		}
		out[name] = strings.TrimSpace(typeName)
	}
	return out, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendGraphQL:
		if err := validateURL("ADMIN_GRAPHQL_URL", c.GraphQL.URL); err != nil {
			return err
		}
	case BackendREST:
		if err := validateURL("ADMIN_REST_URL", c.REST.URL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid ADMIN_BACKEND %q (must be graphql or rest)", c.Backend)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("ADMIN_HTTP_TIMEOUT must be positive")
	}
	if c.HTTP.RetryMax < 0 {
		return fmt.Errorf("ADMIN_RETRY_MAX must not be negative")
	}
	if c.HTTP.RetryWaitMin > c.HTTP.RetryWaitMax {
		return fmt.Errorf("ADMIN_RETRY_WAIT_MIN exceeds ADMIN_RETRY_WAIT_MAX")
	}
	if c.List.DefaultPerPage <= 0 || c.List.MaxPerPage <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.List.DefaultPerPage > c.List.MaxPerPage {
		return fmt.Errorf("ADMIN_DEFAULT_PER_PAGE exceeds ADMIN_MAX_PER_PAGE")
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// ListConfig returns the list defaults as an admin.ListConfig.
func (c *Config) ListConfig() *admin.ListConfig {
	return admin.NewListConfig().
		WithDefaultPerPage(c.List.DefaultPerPage).
		WithMaxPerPage(c.List.MaxPerPage)
}
