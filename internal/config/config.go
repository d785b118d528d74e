package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
// It is resolved once at startup and passed by value afterwards.
type Config struct {
	AppName             string
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	TokenSecret         string
	TokenTTL            time.Duration
	ClientURL           string
	CacheTTL            time.Duration
	ResendAPIKey        string
	EmailFrom           string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadMaxMB         int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}

	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether the service runs with production cookie policies.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins lists the origins accepted for state-changing requests.
func (c Config) AllowedOrigins() []string {
	origins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://tistart.netlify.app",
	}
	if client := strings.TrimRight(strings.TrimSpace(c.ClientURL), "/"); client != "" {
		origins = append(origins, client)
	}
	return origins
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	nodeEnv := strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV")))
	if nodeEnv == "" {
		nodeEnv = "development"
	}

	v := viper.New()
	bind := func(key string, names ...string) {
		_ = v.BindEnv(append([]string{key}, bindingNames(nodeEnv, names...)...)...)
	}

	bind("app.name", "APP_NAME")
	bind("port", "PORT")
	bind("database.url", "DATABASE_URL", "MONGODB_URI")
	bind("redis.url", "REDIS_URL")
	bind("nats.url", "NATS_URL")
	bind("token.secret", "TOKEN_SECRET")
	bind("token.expires_in", "JWT_EXPIRES_IN")
	bind("client.url", "CLIENT_URL")
	bind("cache.ttl", "CACHE_TTL")
	bind("resend.api_key", "RESEND_API_KEY")
	bind("email.from", "EMAIL_FROM")
	bind("stripe.secret_key", "STRIPE_SECRET_KEY")
	bind("stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	bind("stripe.currency", "STRIPE_CURRENCY")
	bind("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	bind("cloudinary.api_key", "CLOUDINARY_API_KEY")
	bind("cloudinary.api_secret", "CLOUDINARY_API_SECRET")
	bind("cloudinary.folder", "CLOUDINARY_FOLDER")
	bind("upload.max_mb", "UPLOAD_MAX_MB")

	v.SetDefault("app.name", "Nemesis API")
	v.SetDefault("port", "5005")
	v.SetDefault("token.expires_in", "7d")
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("stripe.currency", "eur")
	v.SetDefault("cloudinary.folder", "nemesis")
	v.SetDefault("upload.max_mb", 10)

	tokenTTL, err := ParseTokenTTL(v.GetString("token.expires_in"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		Env:                 nodeEnv,
		Port:                v.GetString("port"),
		DatabaseURL:         strings.TrimSpace(v.GetString("database.url")),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		TokenSecret:         v.GetString("token.secret"),
		TokenTTL:            tokenTTL,
		ClientURL:           strings.TrimRight(v.GetString("client.url"), "/"),
		CacheTTL:            cacheTTL,
		ResendAPIKey:        v.GetString("resend.api_key"),
		EmailFrom:           v.GetString("email.from"),
		StripeSecretKey:     v.GetString("stripe.secret_key"),
		StripeWebhookSecret: v.GetString("stripe.webhook_secret"),
		StripeCurrency:      strings.ToLower(v.GetString("stripe.currency")),
		CloudinaryCloudName: v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary.folder"),
		UploadMaxMB:         v.GetInt("upload.max_mb"),
	}

	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 10
	}

	return cfg, nil
}

// ParseTokenTTL accepts Go durations, a day suffix ("7d") or plain seconds.
func ParseTokenTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 24 * time.Hour, nil
	}

	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day count %q", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("non-positive ttl %q", raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("non-positive ttl %q", raw)
	}
	return ttl, nil
}
