package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/session"
	"github.com/xenking/storefront/internal/storefront"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr         string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL  string `usage:"PostgreSQL connection URL; empty keeps everything in memory" flag:"database-url"`
	CatalogFile  string `usage:"Catalog file (.yaml, .json, optionally .gz) used without a database" flag:"catalog-file"`
	ImageBaseURL string `default:"" usage:"Base URL for product images" flag:"image-base-url"`
	TestHelpers  bool   `default:"false" usage:"Mount the /api/test inspection routes" flag:"test-helpers"`
	SecureCookie bool   `default:"false" usage:"Mark the session cookie Secure" flag:"secure-cookie"`
	Checkout     CheckoutConfig
	Notify       NotifyConfig
	Contact      ContactConfig
	Credentials  CredentialsConfig
	Sessions     SessionsConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Health       HealthConfig
	Graceful     GracefulConfig
}

// CheckoutConfig controls the simulated checkout.
type CheckoutConfig struct {
	Delay time.Duration `default:"2s" usage:"Simulated checkout processing time"`
}

// NotifyConfig controls toasts.
type NotifyConfig struct {
	TTL time.Duration `default:"3s" usage:"How long a toast stays visible"`
}

// ContactConfig controls the simulated contact form submission.
type ContactConfig struct {
	SendDelay  time.Duration `default:"1.5s" usage:"Simulated send time"`
	ResetDelay time.Duration `default:"3s"   usage:"How long the success message stays"`
}

// CredentialsConfig is the single accepted mock login.
type CredentialsConfig struct {
	Username string `default:"admin"    usage:"Mock login username"`
	Password string `default:"password" usage:"Mock login password"`
}

// SessionsConfig bounds the in-memory session registry.
type SessionsConfig struct {
	IdleTTL       time.Duration `default:"30m" usage:"Evict sessions idle this long"`
	SweepInterval time.Duration `default:"1m"  usage:"How often idle sessions are swept"`
	Max           int           `default:"0"   usage:"Maximum live sessions, 0 for unlimited"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// HealthConfig controls the liveness probes.
type HealthConfig struct {
	Interval      time.Duration `default:"10s"   usage:"How often health checks run"`
	MaxGoroutines int           `default:"10000" usage:"Liveness fails above this many goroutines" flag:"health-max-goroutines"`
	MaxGCPause    time.Duration `default:"1s"    usage:"Liveness fails when a recent GC pause is longer" flag:"health-max-gc-pause"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and flags, then applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:], "config.yaml", "/etc/storefront/config.yaml")
}

// loadConfig skips flag parsing when args is nil.
func loadConfig(args []string, files ...string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		SkipFlags: args == nil,
		Args:      args,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that
// use standard names like DATABASE_URL and PORT.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		return errors.New("mock credentials must not be empty")
	}
	if c.Health.MaxGoroutines <= 0 {
		return errors.Errorf("health max goroutines %d must be positive", c.Health.MaxGoroutines)
	}
	if c.Sessions.Max < 0 {
		return errors.Errorf("sessions max %d is negative", c.Sessions.Max)
	}
	for name, d := range map[string]time.Duration{
		"checkout delay":      c.Checkout.Delay,
		"notify ttl":          c.Notify.TTL,
		"contact send delay":  c.Contact.SendDelay,
		"contact reset delay": c.Contact.ResetDelay,
		"health interval":     c.Health.Interval,
		"health max gc pause": c.Health.MaxGCPause,
	} {
		if d <= 0 {
			return errors.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Storefront returns the per-session configuration.
func (c *Config) Storefront() storefront.Config {
	return storefront.Config{
		Credentials: session.Credentials{
			Username: c.Credentials.Username,
			Password: c.Credentials.Password,
		},
		CheckoutDelay:     c.Checkout.Delay,
		NotifyTTL:         c.Notify.TTL,
		ContactSendDelay:  c.Contact.SendDelay,
		ContactResetDelay: c.Contact.ResetDelay,
	}
}

// Registry returns the session registry limits.
func (c *Config) Registry() storefront.RegistryConfig {
	return storefront.RegistryConfig{
		IdleTTL:       c.Sessions.IdleTTL,
		SweepInterval: c.Sessions.SweepInterval,
		Max:           c.Sessions.Max,
	}
}
