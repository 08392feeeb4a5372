// Package config reads the server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DevBasePath and ProdBasePath are used when BASE_PATH is unset.
	DevBasePath  = "/"
	ProdBasePath = "/srich3portfolio/"

	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

var (
	ErrConfigRead    = errors.New("failed to read config")
	ErrInsecureAdmin = errors.New("default admin credentials are not allowed in release mode")
)

type Config struct {
	Port             string        `mapstructure:"port"`
	Mode             string        `mapstructure:"gin_mode"`
	BasePath         string        `mapstructure:"base_path"`
	DBPath           string        `mapstructure:"db_path"`
	Analytics        bool          `mapstructure:"analytics"`
	AdminUsername    string        `mapstructure:"admin_username"`
	AdminPassword    string        `mapstructure:"admin_password"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	SessionLimit     int           `mapstructure:"session_limit"`
	VisitorRetention time.Duration `mapstructure:"visitor_retention"`
	LogLevel         string        `mapstructure:"log_level"`
}

func (c Config) Release() bool {
	return c.Mode == gin.ReleaseMode
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// DefaultAdmin reports whether the admin login still uses the built-in credentials.
func (c Config) DefaultAdmin() bool {
	return c.AdminUsername == defaultAdminUsername || c.AdminPassword == defaultAdminPassword
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is required", ErrConfigRead)
	}
	if c.SessionTTL <= 0 || c.SweepInterval <= 0 || c.SessionLimit <= 0 {
		return fmt.Errorf("%w: session ttl, sweep interval and session limit must be positive", ErrConfigRead)
	}
	if c.Release() && c.DefaultAdmin() {
		return ErrInsecureAdmin
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("base_path", "")
	v.SetDefault("db_path", "portfolio.db")
	v.SetDefault("analytics", true)
	v.SetDefault("admin_username", defaultAdminUsername)
	v.SetDefault("admin_password", defaultAdminPassword)
	v.SetDefault("session_ttl", 30*time.Minute)
	v.SetDefault("sweep_interval", time.Minute)
	v.SetDefault("session_limit", 10_000)
	v.SetDefault("visitor_retention", 365*24*time.Hour)
	v.SetDefault("log_level", "")
	v.AutomaticEnv()

	return v
}

// Read loads envFiles (missing files are ignored) and then the process environment.
func Read(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		// Already-set environment variables win over the file.
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(fmt.Errorf("env file %s: %w", file, err), ErrConfigRead)
		}
	}

	v := newViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Join(err, ErrConfigRead)
	}

	if cfg.Mode == "" {
		cfg.Mode = v.GetString("mode")
	}
	if cfg.Mode == "" {
		cfg.Mode = gin.DebugMode
	}
	cfg.BasePath = ResolveBasePath(cfg.BasePath, cfg.Release())

	return cfg, nil
}

// ResolveBasePath picks the asset root: the configured value when set, otherwise
// the development or production default. The result always starts and ends with "/".
func ResolveBasePath(configured string, release bool) string {
	base := strings.TrimSpace(configured)
	if base == "" {
		if release {
			return ProdBasePath
		}

		return DevBasePath
	}

	base = "/" + strings.Trim(base, "/") + "/"
	if base == "//" {
		return "/"
	}

	return base
}
