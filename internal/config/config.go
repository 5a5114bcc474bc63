package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// The processing log is disabled when Host is empty.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a database has been configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for the artifact mirror.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether the artifact mirror has been configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// OCRConfig controls the text recognition engine.
type OCRConfig struct {
	ResultsDir string
	Languages  []string
	PoolSize   int
}

// IngestConfig points at the downstream knowledge-ingestion service.
type IngestConfig struct {
	Endpoint   string
	TimeoutSec int
}

// Timeout returns the outbound request timeout.
func (c IngestConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// OrganizerConfig holds settings for the folder organizer command.
type OrganizerConfig struct {
	DocumentsDir string
	OrganizedDir string
	IntakeURL    string
	IntervalSec  int
}

// DefaultOrganizerInterval is used when ORGANIZER_INTERVAL_SEC is not positive.
const DefaultOrganizerInterval = 10 * time.Second

// Interval returns the sweep interval.
func (c OrganizerConfig) Interval() time.Duration {
	if c.IntervalSec <= 0 {
		return DefaultOrganizerInterval
	}
	return time.Duration(c.IntervalSec) * time.Second
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	Location  *time.Location
	OCR       OCRConfig
	Ingest    IngestConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Organizer OrganizerConfig
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return c.AppHost + ":" + c.Port
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "0.0.0.0"),
		Port:     getEnv("PORT", "5000"),
		Location: getEnvLocation("TZ", time.UTC),
		OCR: OCRConfig{
			ResultsDir: getEnv("OCR_RESULTS_DIR", "./ocr_results"),
			Languages:  getEnvList("OCR_LANGUAGES", []string{"eng"}),
			PoolSize:   getEnvInt("OCR_POOL_SIZE", 2),
		},
		Ingest: IngestConfig{
			Endpoint:   getEnv("INGEST_ENDPOINT", "http://ollama:3001/api/document"),
			TimeoutSec: getEnvInt("INGEST_TIMEOUT_SEC", 30),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Organizer: OrganizerConfig{
			DocumentsDir: getEnv("DOCUMENTS_DIR", "./documents"),
			OrganizedDir: getEnv("ORGANIZED_DIR", "./organized"),
			IntakeURL:    getEnv("DOCETL_URL", "http://docetl:5000"),
			IntervalSec:  getEnvInt("ORGANIZER_INTERVAL_SEC", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blank entries.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnvLocation(key string, def *time.Location) *time.Location {
	if v := os.Getenv(key); v != "" {
		loc, err := time.LoadLocation(v)
		if err == nil {
			return loc
		}
	}
	return def
}
