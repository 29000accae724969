package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/postgres"
	"github.com/Veraticus/meetlog/internal/stats"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. MEETLOG_TELEGRAM_TOKEN for telegram.token.
const EnvPrefix = "MEETLOG"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverJSON     = "json"
)

// DefaultDatabasePath is where the SQLite database lives unless configured.
const DefaultDatabasePath = "~/.local/share/meetlog/meetlog.db"

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 0)
	v.SetDefault("backup.schedule", "0 3 * * *")
	v.SetDefault("report.timezone", engine.DefaultTimeZone)
	v.SetDefault("report.window", string(stats.WindowWeek))
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.modify_ttl", 10*time.Minute)
	v.SetDefault("sheets.enabled", false)
}

// BindEnv makes every key overridable from MEETLOG_* variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// StorageConfig selects and configures the system of record.
type StorageConfig struct {
	Driver         string
	DatabasePath   string
	BackupPath     string
	BackupSchedule string
	Postgres       postgres.Config
}

// LoadStorageConfig reads the storage.*, database.*, postgres.* and backup.* keys.
func LoadStorageConfig(v *viper.Viper) (StorageConfig, error) {
	cfg := StorageConfig{
		Driver:         strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		DatabasePath:   ExpandPath(v.GetString("database.path")),
		BackupPath:     ExpandPath(v.GetString("backup.path")),
		BackupSchedule: strings.TrimSpace(v.GetString("backup.schedule")),
		Postgres: postgres.Config{
			DSN:      v.GetString("postgres.dsn"),
			MaxConns: v.GetInt32("postgres.max_conns"),
			MinConns: v.GetInt32("postgres.min_conns"),
		},
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = ExpandPath(DefaultDatabasePath)
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = filepath.Join(filepath.Dir(cfg.DatabasePath), "meetings.json")
	}

	switch cfg.Driver {
	case DriverSQLite, DriverJSON:
	case DriverPostgres:
		if cfg.Postgres.DSN == "" {
			return cfg, fmt.Errorf("%w: postgres.dsn is required for the postgres driver", common.ErrMissingConfig)
		}
	default:
		return cfg, fmt.Errorf("%w: unknown storage.driver %q", common.ErrInvalidConfig, cfg.Driver)
	}
	return cfg, nil
}

// ReportConfig controls the reporting window.
type ReportConfig struct {
	Location *time.Location
	Window   stats.WindowMode
}

// LoadReportConfig reads the report.* keys.
func LoadReportConfig(v *viper.Viper) (ReportConfig, error) {
	name := v.GetString("report.timezone")
	if name == "" {
		name = engine.DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return ReportConfig{}, fmt.Errorf("%w: report.timezone %q: %w", common.ErrInvalidConfig, name, err)
	}
	mode, err := stats.ParseWindowMode(v.GetString("report.window"))
	if err != nil {
		return ReportConfig{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return ReportConfig{Location: loc, Window: mode}, nil
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token       string
	PollTimeout int
	ModifyTTL   time.Duration
}

// LoadBotConfig reads the telegram.* keys. The token is required.
func LoadBotConfig(v *viper.Viper) (BotConfig, error) {
	cfg := BotConfig{
		Token:       strings.TrimSpace(v.GetString("telegram.token")),
		PollTimeout: v.GetInt("telegram.poll_timeout"),
		ModifyTTL:   v.GetDuration("telegram.modify_ttl"),
	}
	if cfg.Token == "" {
		return cfg, fmt.Errorf("%w: telegram.token (or MEETLOG_TELEGRAM_TOKEN)", common.ErrMissingConfig)
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}
	if cfg.ModifyTTL <= 0 {
		cfg.ModifyTTL = 10 * time.Minute
	}
	return cfg, nil
}
