package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Booking store: "mongo" or "memory".
	BookingStore string `mapstructure:"BOOKING_STORE"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Cache tiers.
	CacheRemoteTimeout   time.Duration `mapstructure:"CACHE_REMOTE_TIMEOUT"`
	CacheLocalMaxEntries int           `mapstructure:"CACHE_LOCAL_MAX_ENTRIES"`
	CacheSweepInterval   time.Duration `mapstructure:"CACHE_SWEEP_INTERVAL"`
	CacheBookingTTL      time.Duration `mapstructure:"CACHE_BOOKING_TTL"`
	CacheProfileTTL      time.Duration `mapstructure:"CACHE_PROFILE_TTL"`

	// Notifications.
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	NotificationConcurrency int           `mapstructure:"NOTIFICATION_CONCURRENCY"`
	ReminderLeadTime        time.Duration `mapstructure:"REMINDER_LEAD_TIME"`
	StatusUpdateRetries     int           `mapstructure:"STATUS_UPDATE_RETRIES"`
	HealthCheckInterval     time.Duration `mapstructure:"HEALTH_CHECK_INTERVAL"`
}

// LoadConfig reads config.yaml (if present) and the environment into a Config.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()

	// Set default values.
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("BOOKING_STORE", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "crewbook")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)
	v.SetDefault("CACHE_REMOTE_TIMEOUT", 250*time.Millisecond)
	v.SetDefault("CACHE_LOCAL_MAX_ENTRIES", 10000)
	v.SetDefault("CACHE_SWEEP_INTERVAL", time.Minute)
	v.SetDefault("CACHE_BOOKING_TTL", 5*time.Minute)
	v.SetDefault("CACHE_PROFILE_TTL", 30*time.Minute)
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("NOTIFICATION_CONCURRENCY", 10)
	v.SetDefault("REMINDER_LEAD_TIME", 24*time.Hour)
	v.SetDefault("STATUS_UPDATE_RETRIES", 3)
	v.SetDefault("HEALTH_CHECK_INTERVAL", time.Minute)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// IsProduction checks if the environment is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
