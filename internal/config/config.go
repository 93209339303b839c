package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrMissing reports required settings that are absent from the environment.
var ErrMissing = errors.New("missing required configuration")

type Config struct {
	Addr       string
	CORSOrigin string
	// Google Sheets
	SheetID         string
	CredentialsPath string
	ProjectionsFile string
	// Cache
	RedisURL string
	CacheTTL time.Duration
	// Logging
	LogLevel string
	LogFile  string
	// Files
	TemplatesDir    string
	OutputDOCXDir   string
	OutputPDFDir    string
	LibreOfficePath string
	ConvertTimeout  time.Duration
	DocumentCity    string
	// Safety limits
	MaxAssetsPerRequest  int
	MaxResultsPerAsset   int
	MaxRowsPerRequest    int
	MaxUpdatesPerRequest int
}

func Load() Config {
	return Config{
		Addr:            getenv("API_ADDR", ":8080"),
		CORSOrigin:      getenv("CORS_ORIGIN", "*"),
		SheetID:         getenv("SHEET_ID", ""),
		CredentialsPath: getenv("CREDENTIALS", ""),
		ProjectionsFile: getenv("SHEET_PROJECTIONS_FILE", ""),
		// Redis is optional, the cache falls back to process memory
		RedisURL:        getenv("REDIS_URL", ""),
		CacheTTL:        time.Duration(getenvInt("CACHE_TTL", 3600)) * time.Second,
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFile:         getenv("LOG_FILE", ""),
		TemplatesDir:    getenv("TEMPLATES_DIR", "modelos"),
		OutputDOCXDir:   getenv("OUTPUT_DOCX_DIR", "entrega_docx"),
		OutputPDFDir:    getenv("OUTPUT_PDF_DIR", "entrega_pdf"),
		LibreOfficePath: getenv("LIBREOFFICE_PATH", "/usr/bin/libreoffice"),
		ConvertTimeout:  time.Duration(getenvInt("CONVERT_TIMEOUT_SECONDS", 60)) * time.Second,
		DocumentCity:    getenv("DOCUMENT_CITY", "Goiânia"),

		MaxAssetsPerRequest:  getenvInt("MAX_ASSETS_PER_REQUEST", 10),
		MaxResultsPerAsset:   getenvInt("MAX_RESULTS_PER_ASSET", 5),
		MaxRowsPerRequest:    getenvInt("MAX_ROWS_PER_REQUEST", 50),
		MaxUpdatesPerRequest: getenvInt("MAX_UPDATES_PER_REQUEST", 50),
	}
}

// Validate reports ErrMissing naming every absent spreadsheet setting.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.SheetID) == "" {
		missing = append(missing, "SHEET_ID")
	}
	if strings.TrimSpace(c.CredentialsPath) == "" {
		missing = append(missing, "CREDENTIALS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
