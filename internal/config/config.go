package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the User-Agent sent to Kodi and to the metadata service.
const DefaultUserAgent = "KodiPresence/1.0 (+https://github.com/Belphemur/KodiPresence)"

type Config struct {
	Kodi struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		PlayerID int    `mapstructure:"player_id"`
		Timeout  string `mapstructure:"timeout"` // Go duration string like "5s"
	} `mapstructure:"kodi"`
	Discord struct {
		ClientID     string `mapstructure:"client_id"`
		DefaultImage string `mapstructure:"default_image"` // asset key shown when no artwork is found
	} `mapstructure:"discord"`
	TMDB struct {
		APIKey   string `mapstructure:"api_key"`
		BaseURL  string `mapstructure:"base_url"`
		Language string `mapstructure:"language"`
		Timeout  string `mapstructure:"timeout"`
	} `mapstructure:"tmdb"`
	IMDBButton bool `mapstructure:"imdb_button"`
	Poll       struct {
		IdleInterval  string `mapstructure:"idle_interval"`
		RateLimit     string `mapstructure:"rate_limit"`
		MaxAttempts   int    `mapstructure:"max_attempts"`
		SeekTolerance string `mapstructure:"seek_tolerance"`
	} `mapstructure:"poll"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // 0 keeps every entry
		TTL      string `mapstructure:"ttl"`      // empty keeps entries for the process lifetime
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Health struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"health"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	LogLevel  string `mapstructure:"log_level"`
	UserAgent string `mapstructure:"user_agent"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

// setDefaults registers every key so AutomaticEnv overrides reach Unmarshal
// even when no config file is present.
func setDefaults(v *viper.Viper) {
	v.SetDefault("kodi.host", "localhost")
	v.SetDefault("kodi.port", 8080)
	v.SetDefault("kodi.username", "")
	v.SetDefault("kodi.password", "")
	v.SetDefault("discord.client_id", "")
	v.SetDefault("discord.default_image", "kodi")
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("cache.ttl", "")
	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("health.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("user_agent", "")
	v.SetDefault("kodi.player_id", 1)
	v.SetDefault("kodi.timeout", "5s")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", "10s")
	v.SetDefault("imdb_button", true)
	v.SetDefault("poll.idle_interval", "3s")
	v.SetDefault("poll.rate_limit", "3s")
	v.SetDefault("poll.max_attempts", 5)
	v.SetDefault("poll.seek_tolerance", "10s")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 0)
	v.SetDefault("metrics.address", "localhost")
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("health.address", "localhost")
	v.SetDefault("health.port", 50051)
}

// LoadConfig reads config.yaml from the working directory (or ./config) and
// overlays APP_* environment variables, e.g. APP_KODI_HOST or APP_TMDB_API_KEY.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

// ParseDuration parses a Go duration string from the config. Empty values
// silently use fallback; invalid values log a warning and use fallback.
func ParseDuration(key, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
