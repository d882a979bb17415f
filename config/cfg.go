package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jekabolt/creator-analytics/internal/analytics"
	httpapi "github.com/jekabolt/creator-analytics/internal/api/http"
	"github.com/jekabolt/creator-analytics/internal/backfill"
	"github.com/jekabolt/creator-analytics/internal/cache"
	"github.com/jekabolt/creator-analytics/internal/ratelimit"
	"github.com/jekabolt/creator-analytics/internal/store"
	"github.com/jekabolt/creator-analytics/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB        store.Config     `mapstructure:"mysql"`
	Redis     cache.Config     `mapstructure:"redis"`
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Analytics analytics.Config `mapstructure:"analytics"`
	Backfill  backfill.Config  `mapstructure:"backfill"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested keys use double underscore, e.g. MYSQL__DSN for mysql.dsn; the flat
// names bound in bindEnvVars work as well.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	setDefaults(v)
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/creator-analytics")
		v.AddConfigPath("/etc/creator-analytics")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	if config.DB.DSN == "" {
		config.DB.DSN = dsnFromEnv()
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	ac := analytics.DefaultConfig()
	v.SetDefault("analytics.cache_ttl", ac.CacheTTL)
	v.SetDefault("analytics.fetch_timeout", ac.FetchTimeout)
	v.SetDefault("analytics.top_customers_limit", ac.TopCustomersLimit)
	v.SetDefault("analytics.loyal_subscribers_limit", ac.LoyalSubscribersLimit)
	v.SetDefault("analytics.default_avatar_url", ac.DefaultAvatarURL)

	bc := backfill.DefaultConfig()
	v.SetDefault("backfill.enabled", bc.Enabled)
	v.SetDefault("backfill.worker_interval", bc.WorkerInterval)
	v.SetDefault("backfill.max_concurrent_creators", bc.MaxConcurrentCreators)
	v.SetDefault("backfill.creators_per_sweep", bc.CreatorsPerSweep)

	rc := ratelimit.DefaultConfig()
	v.SetDefault("http.port", "8081")
	v.SetDefault("http.request_timeout", "30s")
	v.SetDefault("http.backfill_limit_window", rc.Window)
	v.SetDefault("http.backfill_limit_max", rc.Max)

	v.SetDefault("mysql.automigrate", true)
	v.SetDefault("mysql.max_open_connections", 10)
	v.SetDefault("mysql.max_idle_connections", 5)

	v.SetDefault("redis.key_prefix", "creator-analytics")
	v.SetDefault("redis.timeout", "2s")
}

// dsnFromEnv builds a DSN from MYSQL_* variables when all of them are set.
func dsnFromEnv() string {
	host := os.Getenv("MYSQL_HOST")
	port := os.Getenv("MYSQL_PORT")
	user := os.Getenv("MYSQL_USER")
	password := os.Getenv("MYSQL_PASSWORD")
	database := os.Getenv("MYSQL_DATABASE")
	if host == "" || user == "" || password == "" || database == "" {
		return ""
	}
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		user, password, host, port, database)
}

// bindEnvVars binds flat environment variable names to config keys.
func bindEnvVars(v *viper.Viper) {
	// MySQL
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	v.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	v.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")

	// Redis
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.key_prefix", "REDIS_KEY_PREFIX")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.request_timeout", "HTTP_REQUEST_TIMEOUT")
	v.BindEnv("http.backfill_limit_window", "HTTP_BACKFILL_LIMIT_WINDOW")
	v.BindEnv("http.backfill_limit_max", "HTTP_BACKFILL_LIMIT_MAX")

	// Analytics
	v.BindEnv("analytics.cache_ttl", "ANALYTICS_CACHE_TTL")
	v.BindEnv("analytics.fetch_timeout", "ANALYTICS_FETCH_TIMEOUT")
	v.BindEnv("analytics.top_customers_limit", "ANALYTICS_TOP_CUSTOMERS_LIMIT")
	v.BindEnv("analytics.loyal_subscribers_limit", "ANALYTICS_LOYAL_SUBSCRIBERS_LIMIT")
	v.BindEnv("analytics.default_avatar_url", "ANALYTICS_DEFAULT_AVATAR_URL")

	// Backfill sweeper
	v.BindEnv("backfill.enabled", "BACKFILL_ENABLED")
	v.BindEnv("backfill.worker_interval", "BACKFILL_WORKER_INTERVAL")
	v.BindEnv("backfill.max_concurrent_creators", "BACKFILL_MAX_CONCURRENT_CREATORS")
	v.BindEnv("backfill.creators_per_sweep", "BACKFILL_CREATORS_PER_SWEEP")
}
