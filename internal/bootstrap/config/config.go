package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"qctrack/internal/bootstrap/logging"
	"qctrack/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Numbering NumberingConfig `mapstructure:"numbering"`
	Stations  StationsConfig  `mapstructure:"stations"`
	Report    ReportConfig    `mapstructure:"report"`
	Events    EventsConfig    `mapstructure:"events"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type CalendarConfig struct {
	FiscalStartMonth int    `mapstructure:"fiscal_start_month"`
	WeekStart        string `mapstructure:"week_start"`
}

type NumberingConfig struct {
	FallbackOnStoreError bool `mapstructure:"fallback_on_store_error"`
	MaxAttempts          int  `mapstructure:"max_attempts"`
}

type StationsConfig struct {
	CatalogFile    string `mapstructure:"catalog_file"`
	DerivedStation string `mapstructure:"derived_station"`
}

type ReportConfig struct {
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CSVEncoding string        `mapstructure:"csv_encoding"`
}

type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("week_start", cfg.Calendar.WeekStart),
	)

	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if c.Calendar.FiscalStartMonth < 1 || c.Calendar.FiscalStartMonth > 12 {
		return errors.New("calendar.fiscal_start_month must be between 1 and 12")
	}
	if c.Numbering.MaxAttempts < 1 {
		return errors.New("numbering.max_attempts must be at least 1")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "qctrack")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "var/qctrack.sqlite")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("calendar.fiscal_start_month", 7)
	v.SetDefault("calendar.week_start", "saturday")
	v.SetDefault("numbering.fallback_on_store_error", true)
	v.SetDefault("numbering.max_attempts", 5)
	v.SetDefault("stations.catalog_file", "")
	v.SetDefault("stations.derived_station", "SIV")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("report.csv_encoding", "utf-8")
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "qc")
}
