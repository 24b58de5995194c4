package main

import (
	"strings"
	"time"

	"github.com/njchilds90/gocas"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the effective server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Kernel gocas.Config `mapstructure:"kernel" yaml:"kernel"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", "5s")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	k := gocas.DefaultConfig()
	v.SetDefault("kernel.cache_capacity", k.CacheCapacity)
	v.SetDefault("kernel.max_simplify_passes", k.MaxSimplifyPasses)
	v.SetDefault("kernel.permutation_limit", k.PermutationLimit)
	v.SetDefault("kernel.symbolic_gcd_iterations", k.SymbolicGCDIterations)
	v.SetDefault("kernel.integration_depth", k.IntegrationDepth)
}

// newViper returns a viper instance with defaults and GOCAS_* environment
// binding; server.addr reads GOCAS_SERVER_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("GOCAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfigFile loads path, or ./gocasd.yaml when path is empty. A missing
// default file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		return errors.Wrapf(v.ReadInConfig(), "read config %s", path)
	}
	v.SetConfigName("gocasd")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch {
	case cfg.Server.Addr == "":
		return errors.New("server.addr must be set")
	case cfg.Server.MaxBodyBytes <= 0:
		return errors.Errorf("server.max_body_bytes must be positive, got %d", cfg.Server.MaxBodyBytes)
	case cfg.Server.ShutdownTimeout <= 0:
		return errors.New("server.shutdown_timeout must be positive")
	case cfg.Kernel.CacheCapacity < 0:
		return errors.Errorf("kernel.cache_capacity must not be negative, got %d", cfg.Kernel.CacheCapacity)
	}
	return nil
}

func newLogger(cfg LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	logger.SetLevel(gocas.ParseLogLevel(cfg.Level))
	return logger
}
