package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	DB      DatabaseConfig
	Kafka   KafkaConfig
	Logging LoggingConfig
	Seed    SeedConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	RateLimitRPS   int
	RateLimitBurst int
}

type SourcesConfig struct {
	Government GovernmentConfig
	Weather    WeatherConfig
	Social     SocialConfig
	Prober     ProberConfig
}

type GovernmentConfig struct {
	FeedURLs     []string
	PortalURL    string
	PollInterval time.Duration
	Timeout      time.Duration
}

type WeatherConfig struct {
	BaseURL      string
	APIKey       string
	Cities       []string
	PollInterval time.Duration
	Timeout      time.Duration
}

type SocialConfig struct {
	BaseURL      string
	BearerToken  string
	Keywords     []string
	PollInterval time.Duration
	Timeout      time.Duration
}

type ProberConfig struct {
	URL           string
	SlowThreshold time.Duration
	PollInterval  time.Duration
	Timeout       time.Duration
}

// DatabaseConfig selects the store backend. An empty Path keeps all state
// in memory.
type DatabaseConfig struct {
	Path string
}

// KafkaConfig enables the disaster event stream when brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type LoggingConfig struct {
	Level string
}

type SeedConfig struct {
	SampleData bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Sources: SourcesConfig{
			Government: GovernmentConfig{
				FeedURLs: getEnvList("GOVERNMENT_FEED_URLS", []string{
					"https://sachet.ndma.gov.in/feeds/alerts.rss",
					"https://sachet.ndma.gov.in/rss/alerts.xml",
					"https://ndma.gov.in/feeds/alerts.rss",
				}),
				PortalURL:    getEnv("GOVERNMENT_PORTAL_URL", "https://sachet.ndma.gov.in"),
				PollInterval: getEnvDuration("GOVERNMENT_POLL_INTERVAL", 2*time.Minute),
				Timeout:      getEnvDuration("GOVERNMENT_TIMEOUT", 10*time.Second),
			},
			Weather: WeatherConfig{
				BaseURL: getEnv("WEATHER_URL", "https://weather.indianapi.in"),
				APIKey:  getEnv("WEATHER_API_KEY", ""),
				Cities: getEnvList("WEATHER_CITIES", []string{
					"Mumbai", "Delhi", "Chennai", "Kolkata", "Bangalore", "Hyderabad",
				}),
				PollInterval: getEnvDuration("WEATHER_POLL_INTERVAL", 2*time.Minute),
				Timeout:      getEnvDuration("WEATHER_TIMEOUT", 10*time.Second),
			},
			Social: SocialConfig{
				BaseURL:     getEnv("SOCIAL_URL", "https://api.twitter.com"),
				BearerToken: getEnv("SOCIAL_BEARER_TOKEN", ""),
				Keywords: getEnvList("SOCIAL_KEYWORDS", []string{
					"earthquake", "flood", "cyclone", "landslide", "disaster",
				}),
				PollInterval: getEnvDuration("SOCIAL_POLL_INTERVAL", 5*time.Minute),
				Timeout:      getEnvDuration("SOCIAL_TIMEOUT", 10*time.Second),
			},
			Prober: ProberConfig{
				URL:           getEnv("PROBER_URL", "https://sachet.ndma.gov.in"),
				SlowThreshold: getEnvDuration("PROBER_SLOW_THRESHOLD", 2*time.Second),
				PollInterval:  getEnvDuration("PROBER_POLL_INTERVAL", time.Minute),
				Timeout:       getEnvDuration("PROBER_TIMEOUT", 10*time.Second),
			},
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", ""),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "disaster-events"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Seed: SeedConfig{
			SampleData: getEnvBool("SEED_SAMPLE_DATA", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	intervals := map[string]time.Duration{
		"government": c.Sources.Government.PollInterval,
		"weather":    c.Sources.Weather.PollInterval,
		"social":     c.Sources.Social.PollInterval,
		"prober":     c.Sources.Prober.PollInterval,
	}
	for name, interval := range intervals {
		if interval < 30*time.Second {
			return fmt.Errorf("%s poll interval must be at least 30 seconds", name)
		}
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
