package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Webhook WebhookConfig
	Session SessionConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration // must outlast Webhook.Timeout for form posts
}

type WebhookConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // calls per second across all sessions; 0 disables
	RateBurst int
}

type SessionConfig struct {
	Secret     string
	Ephemeral  bool // Secret was generated at startup; cookies die with the process
	CookieName string
	TTL        time.Duration
	Max        int // live sessions; 0 means no cap
	Secure     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
	File  string
}

const defaultWebhookTimeout = 300 * time.Second

// SetDefaults registers every key with its default so that AutomaticEnv
// picks up the matching environment variable.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("server_read_timeout", "15")
	v.SetDefault("server_write_timeout", "")

	v.SetDefault("webhook_url", "http://localhost:5678/webhook/paperrank")
	v.SetDefault("webhook_timeout", strconv.Itoa(int(defaultWebhookTimeout/time.Second)))
	v.SetDefault("webhook_user_agent", "paperrank/1.0")
	v.SetDefault("webhook_rate_limit", 0.0)
	v.SetDefault("webhook_rate_burst", 1)

	v.SetDefault("session_secret", "")
	v.SetDefault("session_cookie", "paperrank_session")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("session_max", 10000)
	v.SetDefault("session_secure", false)

	v.SetDefault("cors_origins", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads the configuration from v. Durations accept Go syntax ("90s")
// or a plain number of seconds.
func Load(v *viper.Viper) (*Config, error) {
	readTimeout, err := duration(v, "server_read_timeout")
	if err != nil {
		return nil, err
	}
	webhookTimeout, err := duration(v, "webhook_timeout")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := duration(v, "server_write_timeout")
	if err != nil {
		return nil, err
	}
	if writeTimeout == 0 {
		writeTimeout = webhookTimeout + 30*time.Second
	}
	ttl, err := duration(v, "session_ttl")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("port"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Webhook: WebhookConfig{
			URL:       v.GetString("webhook_url"),
			Timeout:   webhookTimeout,
			UserAgent: v.GetString("webhook_user_agent"),
			RateLimit: v.GetFloat64("webhook_rate_limit"),
			RateBurst: v.GetInt("webhook_rate_burst"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("session_secret"),
			CookieName: v.GetString("session_cookie"),
			TTL:        ttl,
			Max:        v.GetInt("session_max"),
			Secure:     v.GetBool("session_secure"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("cors_origins")),
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
			File:  v.GetString("log_file"),
		},
	}

	if cfg.Webhook.URL == "" {
		return nil, fmt.Errorf("webhook_url is required")
	}
	if cfg.Webhook.Timeout <= 0 {
		cfg.Webhook.Timeout = defaultWebhookTimeout
	}
	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Session.Secret = secret
		cfg.Session.Ephemeral = true
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
