// Package config loads leavetrack settings from defaults, an optional config
// file and LEAVETRACK_* environment variables, in increasing precedence.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/warp/leave-tracker/leave"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to every environment variable, e.g.
// LEAVETRACK_DATABASE_PATH.
const EnvPrefix = "LEAVETRACK"

const (
	DefaultDatabasePath = "leave.db"
	DefaultSeedPath     = "sample_data.sql"
	DefaultHTTPAddr     = "127.0.0.1:8080"
)

type (
	Config struct {
		Database
		Leave
		Log
		HTTP
	}

	Database struct {
		Path     string
		SeedPath string // bootstrap script, skipped if missing
	}
	Leave struct {
		AnnualQuota decimal.Decimal
		ExportDir   string
	}
	Log struct {
		Level  string // debug, info, warn, error; empty picks the command default
		Format string // console or json
	}
	HTTP struct {
		Addr        string
		CORSOrigins []string
	}
)

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("seed_path", DefaultSeedPath)
	v.SetDefault("annual_quota", leave.DefaultAnnualQuota)
	v.SetDefault("export_dir", ".")
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "console")
	v.SetDefault("http_addr", DefaultHTTPAddr)
	v.SetDefault("cors_origins", []string{})

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	quota, err := decimal.NewFromString(v.GetString("annual_quota"))
	if err != nil {
		return nil, fmt.Errorf("invalid annual_quota %q: %w", v.GetString("annual_quota"), err)
	}

	return &Config{
		Database: Database{
			Path:     v.GetString("database_path"),
			SeedPath: v.GetString("seed_path"),
		},
		Leave: Leave{
			AnnualQuota: quota,
			ExportDir:   v.GetString("export_dir"),
		},
		Log: Log{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		HTTP: HTTP{
			Addr:        v.GetString("http_addr"),
			CORSOrigins: splitList(v.GetStringSlice("cors_origins")),
		},
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	if !c.Leave.AnnualQuota.IsPositive() {
		errs = append(errs, fmt.Errorf("annual quota must be positive, got %s", c.Leave.AnnualQuota))
	}
	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log level: %w", err))
		}
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Service returns the settings of the leave service.
func (c *Config) Service() leave.Config {
	return leave.Config{
		AnnualQuota: c.Leave.AnnualQuota,
		ExportDir:   c.Leave.ExportDir,
	}
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
