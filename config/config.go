// Package config resolves the service configuration from flags, MORTGAGE_*
// environment variables and an optional .env file, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mortgage-service/service"
)

const EnvPrefix = "MORTGAGE"

type Config struct {
	Host            string          `mapstructure:"host"`
	Port            int             `mapstructure:"port"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	Log             LogConfig       `mapstructure:"log"`
	Rate            RateConfig      `mapstructure:"rate"`
	RateLimit       RateLimitConfig `mapstructure:"ratelimit"`
	Redis           RedisConfig     `mapstructure:"redis"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateConfig holds the annual rate of every credit program, in percent.
type RateConfig struct {
	Salary   float64 `mapstructure:"salary"`
	Military float64 `mapstructure:"military"`
	Base     float64 `mapstructure:"base"`
}

// RateLimitConfig limits POST /execute per client. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// RedisConfig enables the Redis mirror when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type flagDef struct {
	key   string
	name  string
	value any
	usage string
}

var flagDefs = []flagDef{
	{"host", "host", "127.0.0.1", "address to listen on"},
	{"port", "port", 8080, "port to listen on"},
	{"shutdown_timeout", "shutdown-timeout", 10 * time.Second, "graceful shutdown timeout"},
	{"log.level", "log-level", "info", "log level (debug, info, warn, error)"},
	{"log.format", "log-format", "text", "log format (text, json)"},
	{"rate.salary", "rate-salary", service.SalaryRate, "annual rate of the salary program, %"},
	{"rate.military", "rate-military", service.MilitaryRate, "annual rate of the military program, %"},
	{"rate.base", "rate-base", service.BaseRate, "annual rate of the base program, %"},
	{"ratelimit.rps", "ratelimit-rps", 5.0, "requests per second per client on /execute, 0 disables"},
	{"ratelimit.burst", "ratelimit-burst", 10, "rate limiter burst size"},
	{"redis.addr", "redis-addr", "", "redis address for the result mirror, empty keeps it in memory"},
	{"redis.password", "redis-password", "", "redis password"},
	{"redis.db", "redis-db", 0, "redis database"},
	{"redis.prefix", "redis-prefix", "mortgage-service", "redis key prefix"},
	{"redis.ttl", "redis-ttl", time.Duration(0), "expiry of mirrored keys, 0 keeps them"},
}

// BindFlags registers every setting as a flag on cmd and binds it into v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	fs := cmd.Flags()
	for _, f := range flagDefs {
		switch def := f.value.(type) {
		case string:
			fs.String(f.name, def, f.usage)
		case int:
			fs.Int(f.name, def, f.usage)
		case float64:
			fs.Float64(f.name, def, f.usage)
		case time.Duration:
			fs.Duration(f.name, def, f.usage)
		default:
			return fmt.Errorf("flag %s: unsupported type %T", f.name, f.value)
		}
		v.SetDefault(f.key, f.value)
		if err := v.BindPFlag(f.key, fs.Lookup(f.name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", f.name, err)
		}
	}
	return nil
}

// NewViper returns a viper instance reading MORTGAGE_* variables, e.g.
// MORTGAGE_REDIS_ADDR for redis.addr.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, f := range flagDefs {
		v.SetDefault(f.key, f.value)
	}
	return v
}

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout %s", c.ShutdownTimeout)
	}
	if err := c.Rates().Validate(); err != nil {
		return err
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("invalid ratelimit rps %v", c.RateLimit.RPS)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid ratelimit burst %d", c.RateLimit.Burst)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("invalid redis ttl %s", c.Redis.TTL)
	}
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Rates() service.RateTable {
	return service.RateTable{
		Salary:   c.Rate.Salary,
		Military: c.Rate.Military,
		Base:     c.Rate.Base,
	}
}
