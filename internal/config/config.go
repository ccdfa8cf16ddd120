package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv  string
	Port     string
	Database DatabaseConfig
	Gemini   GeminiConfig
	Lookup   LookupConfig
	Cache    CacheConfig
	Shopify  ShopifyConfig
	Sync     SyncConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// GeminiConfig holds the AI extraction settings
type GeminiConfig struct {
	APIKey string
	Model  string
	// Timeout bounds one generation call so a hung upstream never stalls
	// an enrichment worker.
	Timeout time.Duration
}

// LookupConfig holds the external enrichment lookup settings.
// Sites are queried in order: earlier entries are trusted more.
type LookupConfig struct {
	Sites       []string
	HTTPTimeout time.Duration
	MaxPageSize int
}

// CacheConfig holds the optional fetched-page cache settings
type CacheConfig struct {
	RedisURL string
	PageTTL  time.Duration
}

// ShopifyConfig holds commerce platform API settings
type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	// Steady-state request rate and burst of the platform's leaky bucket.
	RequestsPerSecond float64
	Burst             int
	HTTPTimeout       time.Duration
}

// SyncConfig tunes the upload dispatcher
type SyncConfig struct {
	BatchSize         int
	BatchPause        time.Duration
	MaxRetries        int
	DefaultRetryAfter time.Duration
	RetryMargin       time.Duration
}

// PipelineConfig tunes the enrichment run
type PipelineConfig struct {
	Workers int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "3010"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "storelift"),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
		Lookup: LookupConfig{
			Sites:       getEnvList("LOOKUP_SITES", []string{"geizhals.de", "idealo.de", "notebookcheck.com"}),
			HTTPTimeout: getEnvDuration("LOOKUP_TIMEOUT", 20*time.Second),
			MaxPageSize: getEnvInt("LOOKUP_MAX_PAGE_BYTES", 30000),
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
			PageTTL:  getEnvDuration("PAGE_CACHE_TTL", 24*time.Hour),
		},
		Shopify: ShopifyConfig{
			ShopDomain:        os.Getenv("SHOPIFY_SHOP_DOMAIN"),
			AccessToken:       os.Getenv("SHOPIFY_ACCESS_TOKEN"),
			APIVersion:        getEnv("SHOPIFY_API_VERSION", "2024-07"),
			RequestsPerSecond: getEnvFloat("SHOPIFY_RPS", 2),
			Burst:             getEnvInt("SHOPIFY_BURST", 40),
			HTTPTimeout:       getEnvDuration("SHOPIFY_TIMEOUT", 30*time.Second),
		},
		Sync: SyncConfig{
			BatchSize:         getEnvInt("SYNC_BATCH_SIZE", 4),
			BatchPause:        getEnvDuration("SYNC_BATCH_PAUSE", 2*time.Second),
			MaxRetries:        getEnvInt("SYNC_MAX_RETRIES", 3),
			DefaultRetryAfter: getEnvDuration("SYNC_DEFAULT_RETRY_AFTER", 2*time.Second),
			RetryMargin:       getEnvDuration("SYNC_RETRY_MARGIN", 500*time.Millisecond),
		},
		Pipeline: PipelineConfig{
			Workers: getEnvInt("PIPELINE_WORKERS", 3),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
