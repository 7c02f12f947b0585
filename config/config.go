package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/tournament-admin/storage"
)

const (
	SessionStoreCookie   = "cookie"
	SessionStorePostgres = "postgres"

	minSessionSecret = 32
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	APIURL     string
	APITimeout time.Duration
	ServerPort int
	LogLevel   slog.Level

	SessionSecret string
	SessionStore  string
	DatabaseURL   string
	SessionMaxAge time.Duration
	SecureCookies bool
	CSRFEnabled   bool

	AllowedOrigins []string
	TrustProxy     bool

	EditorIdleTTL   time.Duration
	JanitorInterval time.Duration

	LoginRateLimit float64
	LoginRateBurst int

	R2 storage.CloudflareR2UploaderConfig
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Отсутствие .env не ошибка.
	_ = godotenv.Load()

	var errs []error
	cfg := &Config{
		APIURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("API_URL")), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionStore:  strings.ToLower(envOr("SESSION_STORE", SessionStoreCookie)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}

	if cfg.APIURL == "" {
		errs = append(errs, errors.New("API_URL environment variable is not set"))
	} else if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_URL must be an absolute URL, got %q", cfg.APIURL))
	}

	if len(cfg.SessionSecret) < minSessionSecret {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecret))
	}

	switch cfg.SessionStore {
	case SessionStoreCookie:
	case SessionStorePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when SESSION_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreCookie, SessionStorePostgres, cfg.SessionStore))
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		errs = append(errs, err)
	} else if port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port))
	}
	cfg.ServerPort = port

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	durations := []struct {
		name string
		def  time.Duration
		dst  *time.Duration
	}{
		{"API_TIMEOUT", 10 * time.Second, &cfg.APITimeout},
		{"SESSION_MAX_AGE", 12 * time.Hour, &cfg.SessionMaxAge},
		{"EDITOR_IDLE_TTL", 30 * time.Minute, &cfg.EditorIdleTTL},
		{"JANITOR_INTERVAL", time.Minute, &cfg.JanitorInterval},
	}
	for _, d := range durations {
		v, err := durationEnv(d.name, d.def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*d.dst = v
	}

	bools := []struct {
		name string
		def  bool
		dst  *bool
	}{
		{"SECURE_COOKIES", false, &cfg.SecureCookies},
		{"CSRF_ENABLED", true, &cfg.CSRFEnabled},
		{"TRUST_PROXY", false, &cfg.TrustProxy},
	}
	for _, b := range bools {
		v, err := boolEnv(b.name, b.def)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*b.dst = v
	}

	cfg.AllowedOrigins = splitList(envOr("ALLOWED_ORIGINS", "http://localhost:5173"))

	if cfg.LoginRateLimit, err = floatEnv("LOGIN_RATE_LIMIT", 1); err != nil {
		errs = append(errs, err)
	} else if cfg.LoginRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %v", cfg.LoginRateLimit))
	}
	if cfg.LoginRateBurst, err = intEnv("LOGIN_RATE_BURST", 5); err != nil {
		errs = append(errs, err)
	}

	cfg.R2 = storage.CloudflareR2UploaderConfig{
		AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}
	if err := checkR2(cfg.R2); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkR2: либо все R2_* заданы, либо ни одной.
func checkR2(c storage.CloudflareR2UploaderConfig) error {
	vars := map[string]string{
		"R2_ACCOUNT_ID":        c.AccountID,
		"R2_ACCESS_KEY_ID":     c.AccessKeyID,
		"R2_SECRET_ACCESS_KEY": c.SecretAccessKey,
		"R2_BUCKET_NAME":       c.BucketName,
		"R2_PUBLIC_BASE_URL":   c.PublicBaseURL,
	}
	var missing []string
	for name, v := range vars {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 || len(missing) == len(vars) {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("incomplete R2 configuration, missing %s", strings.Join(missing, ", "))
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func intEnv(name string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func floatEnv(name string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func boolEnv(name string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if v <= 0 {
		return def, fmt.Errorf("%s must be positive, got %s", name, raw)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ClientConfig - настройки команд CLI, которые ходят в API напрямую, без BFF.
type ClientConfig struct {
	APIURL     string
	APITimeout time.Duration
	LogLevel   slog.Level
	Token      string
}

// LoadClient читает только то, что нужно для обращения к API. Токен из флага
// имеет приоритет над TOURNAMENT_ADMIN_TOKEN.
func LoadClient(token string) (*ClientConfig, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := &ClientConfig{
		APIURL: strings.TrimRight(strings.TrimSpace(os.Getenv("API_URL")), "/"),
		Token:  strings.TrimSpace(token),
	}
	if cfg.Token == "" {
		cfg.Token = strings.TrimSpace(os.Getenv("TOURNAMENT_ADMIN_TOKEN"))
	}

	if cfg.APIURL == "" {
		errs = append(errs, errors.New("API_URL environment variable is not set"))
	} else if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_URL must be an absolute URL, got %q", cfg.APIURL))
	}
	if cfg.Token == "" {
		errs = append(errs, errors.New("API token is required: pass --token or set TOURNAMENT_ADMIN_TOKEN"))
	}

	timeout, err := durationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.APITimeout = timeout

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
