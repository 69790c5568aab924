package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type LinkedIn struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIURL       string
	AuthURL      string
	TokenURL     string
}

type OpenAI struct {
	APIKey       string
	APIURL       string
	Model        string
	HashtagModel string
}

type Config struct {
	Port                 string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	SecretKey            string
	TokenTTL             time.Duration
	OAuthStateTTL        time.Duration
	HTTPTimeout          time.Duration
	TokenRefreshInterval string
	QueueConcurrency     int
	LogLevel             string
	LinkedIn             LinkedIn
	OpenAI               OpenAI
}

func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "3000"),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:            getEnv("SECRET_KEY", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		OAuthStateTTL:        getEnvDuration("OAUTH_STATE_TTL", 10*time.Minute),
		HTTPTimeout:          getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		TokenRefreshInterval: getEnv("TOKEN_REFRESH_INTERVAL", "@every 10m"),
		QueueConcurrency:     getEnvInt("QUEUE_CONCURRENCY", 10),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LinkedIn: LinkedIn{
			ClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("LINKEDIN_REDIRECT_URI", ""),
			APIURL:       getEnv("LINKEDIN_API_URL", "https://api.linkedin.com/v2"),
			AuthURL:      getEnv("LINKEDIN_AUTH_URL", ""),
			TokenURL:     getEnv("LINKEDIN_TOKEN_URL", ""),
		},
		OpenAI: OpenAI{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			APIURL:       getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
			Model:        getEnv("OPENAI_MODEL", "gpt-4"),
			HashtagModel: getEnv("OPENAI_HASHTAG_MODEL", "gpt-3.5-turbo"),
		},
	}
}

// Validate reports every missing setting the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.PostgresURI == "" {
		errs = append(errs, errors.New("POSTGRES_URI is required"))
	}
	switch len(c.SecretKey) {
	case 16, 24, 32:
	default:
		errs = append(errs, errors.New("SECRET_KEY must be 16, 24 or 32 bytes long"))
	}
	if c.LinkedIn.ClientID == "" || c.LinkedIn.ClientSecret == "" || c.LinkedIn.RedirectURI == "" {
		errs = append(errs, errors.New("LinkedIn configuration is missing"))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
