package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv                 string        `mapstructure:"APP_ENV"`
	Port                   string        `mapstructure:"PORT"`
	GRPCPort               string        `mapstructure:"GRPC_PORT"`
	DatabaseURL            string        `mapstructure:"DATABASE_URL"`
	SessionBackend         string        `mapstructure:"SESSION_BACKEND"`
	SessionDatabaseURL     string        `mapstructure:"SESSION_DATABASE_URL"`
	SessionSecret          string        `mapstructure:"SESSION_SECRET"`
	SessionTTL             time.Duration `mapstructure:"SESSION_TTL"`
	SessionCleanupInterval time.Duration `mapstructure:"SESSION_CLEANUP_INTERVAL"`
	RedisURL               string        `mapstructure:"REDIS_URL"`
	RedisPassword          string        `mapstructure:"REDIS_PASSWORD"`
	CORSAllowedOrigins     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS           float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst         int           `mapstructure:"RATE_LIMIT_BURST"`
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func LoadConfig() (config Config, err error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GRPC_PORT", "9090")
	v.SetDefault("DATABASE_URL", "sqlite://tracker.db")
	v.SetDefault("SESSION_BACKEND", "sqlite")
	v.SetDefault("SESSION_DATABASE_URL", "sqlite://sessions.db")
	v.SetDefault("SESSION_SECRET", "dev-session-secret-change-me-0123456789")
	v.SetDefault("SESSION_TTL", time.Hour)
	v.SetDefault("SESSION_CLEANUP_INTERVAL", 10*time.Minute)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.AutomaticEnv()

	err = v.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}
