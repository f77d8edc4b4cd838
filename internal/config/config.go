// Package config loads the service's YAML configuration file and
// applies environment-variable overrides, mirroring the teacher's
// loadConfig but generalized to the payment-code pipeline's settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the boleto pipeline
// service.
type Config struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	Pipeline PipelineConfig `yaml:"pipeline"`
	OCR      OCRConfig      `yaml:"ocr"`
	Worker   WorkerConfig   `yaml:"worker"`
	Suppliers SuppliersConfig `yaml:"suppliers"`
	SOAP     SOAPConfig     `yaml:"soap"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// PipelineConfig controls the extractor stages shared by Optical and
// OCR (spec §6 "OCR rendering DPI (default 300)").
type PipelineConfig struct {
	RenderDPI int    `yaml:"render_dpi"`
	TempDir   string `yaml:"temp_dir"`
	CacheDir  string `yaml:"cache_dir"`
}

// OCRConfig configures the text-recognition backend.
type OCRConfig struct {
	Language string `yaml:"language"`
}

// WorkerConfig bounds the pipeline's parallel-invocation pool (spec
// §5, default 4).
type WorkerConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// SuppliersConfig points at the CNPJ→IDPGTO mapping CSV (spec §6).
type SuppliersConfig struct {
	CSVPath string `yaml:"csv_path"`
}

// SOAPConfig holds the downstream submitter endpoint and credentials.
type SOAPConfig struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StorageConfig configures optional original-PDF archival.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// DatabaseConfig configures the optional submission audit log.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// AuthConfig configures JWT issuance for the HTTP surface.
type AuthConfig struct {
	Secret     string `yaml:"secret"`
	TokenTTLMin int   `yaml:"token_ttl_minutes"`
}

// Load reads path, parses it as YAML, and applies environment
// overrides on top — the same two-step shape the teacher uses,
// generalized to this service's settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Pipeline.RenderDPI == 0 {
		cfg.Pipeline.RenderDPI = 300
	}
	if cfg.Pipeline.TempDir == "" {
		cfg.Pipeline.TempDir = os.TempDir()
	}
	if cfg.Worker.PoolSize == 0 {
		cfg.Worker.PoolSize = 4
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "por"
	}
	if cfg.Auth.TokenTTLMin == 0 {
		cfg.Auth.TokenTTLMin = 60
	}
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Port = n
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		cfg.Host = host
	}
	if dpi := os.Getenv("PIPELINE_RENDER_DPI"); dpi != "" {
		if n, err := strconv.Atoi(dpi); err == nil {
			cfg.Pipeline.RenderDPI = n
		}
	}
	if dir := os.Getenv("PIPELINE_TEMP_DIR"); dir != "" {
		cfg.Pipeline.TempDir = dir
	}
	if size := os.Getenv("WORKER_POOL_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			cfg.Worker.PoolSize = n
		}
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		cfg.OCR.Language = lang
	}
	if path := os.Getenv("SUPPLIERS_CSV_PATH"); path != "" {
		cfg.Suppliers.CSVPath = path
	}
	if endpoint := os.Getenv("SOAP_ENDPOINT"); endpoint != "" {
		cfg.SOAP.Endpoint = endpoint
	}
	if user := os.Getenv("SOAP_USERNAME"); user != "" {
		cfg.SOAP.Username = user
	}
	if pass := os.Getenv("SOAP_PASSWORD"); pass != "" {
		cfg.SOAP.Password = pass
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		cfg.Storage.Endpoint = endpoint
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" {
		cfg.Storage.AccessKey = key
	}
	if key := os.Getenv("MINIO_SECRET_KEY"); key != "" {
		cfg.Storage.SecretKey = key
	}
}
