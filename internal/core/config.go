package core

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlcond/internal/logger"
	"github.com/coregx/sqlcond/internal/security"
)

// Config is the file form of the DB options.
//
//	driver: sqlite
//	dsn: "file:app.db"
//	max_open_conns: 10
//	conn_max_lifetime: 5m
//	stmt_cache_capacity: 500
//	validate: true
//	strict: false
//	audit: writes
//	sensitive_fields: [password, token]
type Config struct {
	Driver              string        `yaml:"driver"`
	DSN                 string        `yaml:"dsn"`
	MaxOpenConns        int           `yaml:"max_open_conns"`
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	ConnMaxLifetime     time.Duration `yaml:"conn_max_lifetime"`
	StmtCacheCapacity   *int          `yaml:"stmt_cache_capacity"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	Validate            bool          `yaml:"validate"`
	Strict              bool          `yaml:"strict"`
	Audit               string        `yaml:"audit"`
	SensitiveFields     []string      `yaml:"sensitive_fields"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(err, "read config")
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML config document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, WrapError(err, "parse config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Driver == "" {
		return fmt.Errorf("config: driver is required")
	}
	if _, err := c.auditLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) auditLevel() (security.AuditLevel, error) {
	switch strings.ToLower(c.Audit) {
	case "", "none":
		return security.AuditNone, nil
	case "writes":
		return security.AuditWrites, nil
	case "all":
		return security.AuditAll, nil
	}
	return security.AuditNone, fmt.Errorf("config: unknown audit level %q", c.Audit)
}

// Options converts the config to DB options. l receives statement logs
// and audit records; nil disables both.
func (c *Config) Options(l logger.Logger) []Option {
	var opts []Option
	if c.MaxOpenConns > 0 {
		opts = append(opts, WithMaxOpenConns(c.MaxOpenConns))
	}
	if c.MaxIdleConns > 0 {
		opts = append(opts, WithMaxIdleConns(c.MaxIdleConns))
	}
	if c.ConnMaxLifetime > 0 {
		opts = append(opts, WithConnMaxLifetime(c.ConnMaxLifetime))
	}
	if c.StmtCacheCapacity != nil {
		opts = append(opts, WithStmtCacheCapacity(*c.StmtCacheCapacity))
	}
	if c.HealthCheckInterval > 0 {
		opts = append(opts, WithHealthCheck(c.HealthCheckInterval))
	}
	if c.Validate || c.Strict {
		opts = append(opts, WithValidator(security.NewValidator(security.WithStrict(c.Strict))))
	}
	if len(c.SensitiveFields) > 0 {
		opts = append(opts, WithSanitizer(logger.NewSanitizer(c.SensitiveFields)))
	}
	if l != nil {
		opts = append(opts, WithLogger(l))
		if level, _ := c.auditLevel(); level != security.AuditNone {
			opts = append(opts, WithAuditor(security.NewAuditor(l, level)))
		}
	}
	return opts
}

// OpenConfig opens the database described by cfg. extra options are
// applied after the config ones.
func OpenConfig(cfg *Config, l logger.Logger, extra ...Option) (*DB, error) {
	return Open(cfg.Driver, cfg.DSN, append(cfg.Options(l), extra...)...)
}
