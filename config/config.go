package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Version is reported by /healthz and rendered in page footers.
const Version = "proofok-simple-go-v1.0"

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort string
	// BaseURL overrides the external base URL used when building proof links.
	// Empty means the URL is inferred from the incoming request.
	BaseURL            string
	JWTSecret          string
	APIKeyHash         string // bcrypt hash of the sender API key
	TokenTTLMinutes    int
	RateLimitPerMinute int
	AllowedOrigins     []string
	MaxUploadMB        int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Storage locations
	UploadDir string
	DataDir   string
	// Email notification
	EmailProvider  string // sendgrid | smtp
	EmailMode      string // async | sync | off
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	ToEmail        string
	SendTimeoutSec int
	NotifyWorkers  int
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPTLS        bool
	// Redis for the upload abuse guard
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Upload abuse guard
	UploadMaxPerIPPerDay     int
	UploadAttemptCooldownSec int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads the JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.BaseURL = getString(app, "BaseURL")
		out.JWTSecret = getString(app, "JWTSecret")
		out.APIKeyHash = getString(app, "APIKeyHash")
		if v := getInt(app, "TokenTTLMinutes"); v != 0 {
			out.TokenTTLMinutes = v
		}
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if v := getInt(app, "MaxUploadMB"); v != 0 {
			out.MaxUploadMB = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if st, ok := raw["storage"].(map[string]any); ok {
		if v := getString(st, "UploadDir"); v != "" {
			out.UploadDir = v
		}
		if v := getString(st, "DataDir"); v != "" {
			out.DataDir = v
		}
	}

	if em, ok := raw["email"].(map[string]any); ok {
		if v := getString(em, "Provider"); v != "" {
			out.EmailProvider = v
		}
		if v := getString(em, "Mode"); v != "" {
			out.EmailMode = v
		}
		out.SendGridAPIKey = getString(em, "SendGridAPIKey")
		out.FromEmail = getString(em, "FromEmail")
		out.FromName = getString(em, "FromName")
		out.ToEmail = getString(em, "ToEmail")
		if v := getInt(em, "SendTimeoutSec"); v != 0 {
			out.SendTimeoutSec = v
		}
		if v := getInt(em, "Workers"); v != 0 {
			out.NotifyWorkers = v
		}
		out.SMTPHost = getString(em, "SMTPHost")
		if v := getInt(em, "SMTPPort"); v != 0 {
			out.SMTPPort = v
		}
		out.SMTPUsername = getString(em, "SMTPUsername")
		out.SMTPPassword = getString(em, "SMTPPassword")
		out.SMTPTLS = getBool(em, "SMTPTLS")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if up, ok := raw["uploadguard"].(map[string]any); ok {
		if v := getInt(up, "MaxPerIPPerDay"); v != 0 {
			out.UploadMaxPerIPPerDay = v
		}
		if v := getInt(up, "AttemptCooldownSec"); v != 0 {
			out.UploadAttemptCooldownSec = v
		}
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "5000"
	}
	if c.TokenTTLMinutes <= 0 {
		c.TokenTTLMinutes = 60
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = 60
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 50
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.EmailProvider == "" {
		c.EmailProvider = "sendgrid"
	}
	if c.EmailMode == "" {
		c.EmailMode = "async"
	}
	if c.FromEmail == "" {
		c.FromEmail = "no-reply@example.com"
	}
	if c.ToEmail == "" {
		c.ToEmail = "orders@example.com"
	}
	if c.SendTimeoutSec <= 0 {
		c.SendTimeoutSec = 12
	}
	if c.NotifyWorkers <= 0 {
		c.NotifyWorkers = 2
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("BASE_URL", ""); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("API_KEY_HASH", ""); v != "" {
		c.APIKeyHash = v
	}
	if v := getEnv("TOKEN_TTL_MINUTES", ""); v != "" {
		c.TokenTTLMinutes = mustParseInt(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("MAX_UPLOAD_MB", ""); v != "" {
		c.MaxUploadMB = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_LOG_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("UPLOAD_DIR", ""); v != "" {
		c.UploadDir = v
	}
	if v := getEnv("DATA_DIR", ""); v != "" {
		c.DataDir = v
	}
	if v := getEnv("EMAIL_PROVIDER", ""); v != "" {
		c.EmailProvider = strings.ToLower(v)
	}
	if v := getEnv("EMAIL_MODE", ""); v != "" {
		c.EmailMode = strings.ToLower(v)
	}
	if v := getEnv("SENDGRID_API_KEY", ""); v != "" {
		c.SendGridAPIKey = v
	}
	if v := getEnv("FROM_EMAIL", ""); v != "" {
		c.FromEmail = v
	}
	if v := getEnv("FROM_NAME", ""); v != "" {
		c.FromName = v
	}
	if v := getEnv("TO_EMAIL", ""); v != "" {
		c.ToEmail = v
	}
	if v := getEnv("SEND_TIMEOUT_SEC", ""); v != "" {
		c.SendTimeoutSec = mustParseInt(v)
	}
	if v := getEnv("NOTIFY_WORKERS", ""); v != "" {
		c.NotifyWorkers = mustParseInt(v)
	}
	if v := getEnv("SMTP_HOST", ""); v != "" {
		c.SMTPHost = v
	}
	if v := getEnv("SMTP_PORT", ""); v != "" {
		c.SMTPPort = mustParseInt(v)
	}
	if v := getEnv("SMTP_USERNAME", ""); v != "" {
		c.SMTPUsername = v
	}
	if v := getEnv("SMTP_PASSWORD", ""); v != "" {
		c.SMTPPassword = v
	}
	if v := getEnv("SMTP_TLS", ""); v != "" {
		c.SMTPTLS = v == "true"
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("UPLOAD_MAX_PER_IP_PER_DAY", ""); v != "" {
		c.UploadMaxPerIPPerDay = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_ATTEMPT_COOLDOWN_SEC", ""); v != "" {
		c.UploadAttemptCooldownSec = mustParseInt(v)
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
