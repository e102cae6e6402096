package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	LogLevel string
}

// DatabaseConfig selects and sizes the catalog store.
type DatabaseConfig struct {
	Driver           string // postgres | sqlite | firestore | memory
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	FirestoreProject string
	Collection       string
}

// ServerConfig holds daemon configuration
type ServerConfig struct {
	GRPCAddr  string
	IngestDir string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractBin string
	TessdataDir  string
	Lang         string
	Timeout      time.Duration
}

// LLMConfig holds AI extraction configuration
type LLMConfig struct {
	Provider      string // openai | vertex | none
	Model         string
	APIKey        string
	BaseURL       string
	Temperature   float32
	Timeout       time.Duration
	ProbeInterval time.Duration
	VertexProject string
	VertexRegion  string
	VertexModel   string
}

// PipelineConfig bounds document processing.
type PipelineConfig struct {
	Workers            int
	QueueSize          int
	ProcessTimeout     time.Duration
	MaxUploadBytes     int64
	PersistConcurrency int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "memory")),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			FirestoreProject: getEnv("FIRESTORE_PROJECT", getEnv("VERTEX_PROJECT", "")),
			Collection:       getEnv("CATALOG_COLLECTION", "crop_records"),
		},
		Server: ServerConfig{
			GRPCAddr:  getEnv("GRPC_ADDR", ":8080"),
			IngestDir: getEnv("INGEST_DIR", ""),
		},
		OCR: OCRConfig{
			TesseractBin: getEnv("TESSERACT_BIN", ""),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			Lang:         getEnv("OCR_LANG", "eng"),
			Timeout:      getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			BaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
			ProbeInterval: getEnvAsDuration("LLM_PROBE_INTERVAL", time.Minute),
			VertexProject: getEnv("VERTEX_PROJECT", ""),
			VertexRegion:  getEnv("VERTEX_REGION", "us-central1"),
			VertexModel:   getEnv("VERTEX_MODEL", "gemini-1.5-pro"),
		},
		Pipeline: PipelineConfig{
			Workers:            getEnvAsInt("PROCESS_WORKERS", 4),
			QueueSize:          getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout:     getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
			MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 50<<20),
			PersistConcurrency: getEnvAsInt("PERSIST_CONCURRENCY", 4),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the combinations the binaries cannot run without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return NewAppError("CONFIG_ERROR", "DB_URL is required for driver "+c.Database.Driver, ErrInvalidInput)
		}
	case "firestore":
		if c.Database.FirestoreProject == "" {
			return NewAppError("CONFIG_ERROR", "FIRESTORE_PROJECT is required for driver firestore", ErrInvalidInput)
		}
	case "memory":
	default:
		return NewAppError("CONFIG_ERROR", "unknown DB_DRIVER "+strconv.Quote(c.Database.Driver), ErrInvalidInput)
	}

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "vertex":
		if c.LLM.VertexProject == "" {
			return NewAppError("CONFIG_ERROR", "VERTEX_PROJECT is required", ErrInvalidInput)
		}
	case "none":
	default:
		return NewAppError("CONFIG_ERROR", "unknown LLM_PROVIDER "+strconv.Quote(c.LLM.Provider), ErrInvalidInput)
	}

	if c.LLM.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "LLM_TIMEOUT must be positive", ErrInvalidInput)
	}
	if pt := c.Pipeline.ProcessTimeout; pt > 0 && pt <= c.LLM.Timeout+c.OCR.Timeout {
		return NewAppError("CONFIG_ERROR", "PROCESS_TIMEOUT must exceed LLM_TIMEOUT + OCR_TIMEOUT", ErrInvalidInput)
	}
	if c.Pipeline.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "PROCESS_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Pipeline.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_BYTES must be positive", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
