package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"` // sqlite | postgres
	Path    string `mapstructure:"path"`   // sqlite file
	DSN     string `mapstructure:"dsn"`    // postgres
	LogMode bool   `mapstructure:"log_mode"`
}

type AuthConfig struct {
	AllowedDomains     []string      `mapstructure:"allowed_domains"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	BcryptCost         int           `mapstructure:"bcrypt_cost"`
	SessionCookie      string        `mapstructure:"session_cookie"`
	ForceChangeCookie  string        `mapstructure:"force_cookie"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
	CookieDomain       string        `mapstructure:"cookie_domain"`
	LoginPath          string        `mapstructure:"login_path"`
	ChangePasswordPath string        `mapstructure:"change_password_path"`
	LandingPath        string        `mapstructure:"landing_path"`
}

type SecurityConfig struct {
	// AllowedOrigins enables Origin/Referer checks on state-changing API
	// calls when non-empty.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SeedConfig struct {
	Secret        string `mapstructure:"secret"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

type AppSubConfig struct {
	Environment string `mapstructure:"environment"`
	PageSize    int    `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Security SecurityConfig `mapstructure:"security"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppSubConfig   `mapstructure:"app"`
}

// IsDevelopment reports whether development-only tooling may run.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Environment, "development")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/knowledge-hub.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("auth.allowed_domains", []string{"fau.de"})
	v.SetDefault("auth.session_ttl", "8h")
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.session_cookie", "orchid_session")
	v.SetDefault("auth.force_cookie", "orchid_force_pw_change")
	v.SetDefault("auth.login_path", "/login")
	v.SetDefault("auth.change_password_path", "/change-password")
	v.SetDefault("auth.landing_path", "/dashboard")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.cookie_domain", "")

	v.SetDefault("security.allowed_origins", []string{})

	// keys need a default so that HUB_SEED_* variables are picked up
	v.SetDefault("seed.secret", "")
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("seed.admin_password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("app.environment", "production")
	v.SetDefault("app.page_size", 20)
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// With an empty path ./config.yaml is used when present; defaults and HUB_*
// environment variables are enough to boot. An explicit path must exist.
// The returned value is meant to be treated as immutable and passed
// explicitly to every component that needs it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. HUB_SERVER_PORT=9000
	v.SetEnvPrefix("HUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) normalize() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("config: database.path must be set for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.dsn must be set for postgres")
		}
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.Database.Driver)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: auth.session_ttl must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.SessionCookie == "" || c.Auth.ForceChangeCookie == "" {
		return fmt.Errorf("config: auth cookie names must be set")
	}
	if c.Auth.SessionCookie == c.Auth.ForceChangeCookie {
		return fmt.Errorf("config: auth.session_cookie and auth.force_cookie must differ")
	}

	domains := make([]string, 0, len(c.Auth.AllowedDomains))
	for _, d := range c.Auth.AllowedDomains {
		d = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(d), "@")))
		if d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 {
		return fmt.Errorf("config: auth.allowed_domains must list at least one domain")
	}
	c.Auth.AllowedDomains = domains

	if c.App.PageSize <= 0 || c.App.PageSize > 100 {
		c.App.PageSize = 20
	}
	return nil
}
