package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}
type AdminHTTP struct {
	Host string
	Port int
}

// Limits 进程级防护（限流 / 并发 / 请求体 / 超时）
type Limits struct {
	RPS               float64
	Burst             int
	PerIPRPS          float64 `mapstructure:"per_ip_rps"`
	PerIPBurst        int     `mapstructure:"per_ip_burst"`
	MaxInFlight       int64   `mapstructure:"max_in_flight"`
	MaxQueueWaitMs    int     `mapstructure:"max_queue_wait_ms"`
	MaxBodyBytes      int64   `mapstructure:"max_body_bytes"`
	RequestTimeoutSec int     `mapstructure:"request_timeout_sec"`
}

type App struct {
	Name        string
	Env         string
	APIPrefix   string   `mapstructure:"api_prefix"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	HTTP        HTTP
	Admin       AdminHTTP
	Limits      Limits
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int `mapstructure:"access_token_ttl_min"`
}

type Security struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Redis struct {
	Enabled       bool   `mapstructure:"enabled"`
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	SummaryTTLSec int    `mapstructure:"summary_ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

// Seed 管理员初始化（cmd/seed）
type Seed struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	Security Security
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Seed     Seed
}

func (c *Config) IsProduction() bool { return strings.EqualFold(c.App.Env, "production") }

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenTTLMin) * time.Minute
}

func (c *Config) SummaryTTL() time.Duration {
	return time.Duration(c.Redis.SummaryTTLSec) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "finance-tracker")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.api_prefix", "/api")
	v.SetDefault("app.cors_origins", []string{"*"})
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 3001)
	v.SetDefault("app.limits.rps", 200)
	v.SetDefault("app.limits.burst", 400)
	v.SetDefault("app.limits.per_ip_rps", 20)
	v.SetDefault("app.limits.per_ip_burst", 40)
	v.SetDefault("app.limits.max_in_flight", 300)
	v.SetDefault("app.limits.max_queue_wait_ms", 2000)
	v.SetDefault("app.limits.max_body_bytes", 1<<20)
	v.SetDefault("app.limits.request_timeout_sec", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "finance-tracker")
	v.SetDefault("jwt.access_token_ttl_min", 30*24*60)

	v.SetDefault("security.bcrypt_cost", 10)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "finance.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.summary_ttl_sec", 300)

	v.SetDefault("seed.admin_name", "Administrador")
	v.SetDefault("seed.admin_email", "")
	v.SetDefault("seed.admin_password", "")
}

// Defaults returns the built-in defaults without reading a file or the
// environment. The result is not validated (jwt.secret is empty).
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return &c
}

// Load 读取 YAML + APP_ 前缀环境变量。path 为空时依次尝试 CONFIG_PATH 与默认路径；
// 默认路径不存在时只用默认值 + 环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = DefaultPath
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil || explicit {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var supportedDrivers = []string{"postgres", "mysql", "sqlite"}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret must be set"))
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		errs = append(errs, fmt.Errorf("jwt.access_token_ttl_min must be positive, got %d", c.JWT.AccessTokenTTLMin))
	}
	known := false
	for _, d := range supportedDrivers {
		if c.DB.Driver == d {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("db.driver %q must be one of %v", c.DB.Driver, supportedDrivers))
	}
	for name, p := range map[string]int{"app.http.port": c.App.HTTP.Port, "app.admin.port": c.App.Admin.Port} {
		if p < 1 || p > 65535 {
			errs = append(errs, fmt.Errorf("%s %d must be between 1 and 65535", name, p))
		}
	}
	if c.Redis.Enabled && c.Redis.SummaryTTLSec <= 0 {
		errs = append(errs, errors.New("redis.summary_ttl_sec must be positive when redis is enabled"))
	}
	if c.App.APIPrefix != "" && !strings.HasPrefix(c.App.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("app.api_prefix %q must start with /", c.App.APIPrefix))
	}
	return errors.Join(errs...)
}
