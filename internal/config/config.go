package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	App      AppConfig
	Minio    MinioConfig
	Upload   FileUploadConfig
	Gate     GateConfig
	Page     PageConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Server   ServerConfig
	Site     SiteConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

// AppConfig holds the three values injected into the site at startup
type AppConfig struct {
	Service          ServiceConfig `envconfig:"SERVICE_CONFIG"`
	InitialAuthToken string        `envconfig:"INITIAL_AUTH_TOKEN"`
	AppID            string        `envconfig:"APP_ID" default:"default-app-id"`
}

// ServiceConfig is the platform configuration blob, given as JSON
type ServiceConfig struct {
	ProjectID     string `json:"projectId"`
	AuthDomain    string `json:"authDomain"`
	StorageBucket string `json:"storageBucket"`
	AppID         string `json:"appId"`
}

// Decode implements envconfig.Decoder
func (s *ServiceConfig) Decode(value string) error {
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), s); err != nil {
		return fmt.Errorf("invalid service config: %w", err)
	}
	return nil
}

// IsZero reports whether no service config was supplied
func (s ServiceConfig) IsZero() bool {
	return s == ServiceConfig{}
}

// DefaultServiceConfig returns the configuration used when none is injected
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ProjectID:     "wedding-website-dc15b",
		AuthDomain:    "wedding-website-dc15b.firebaseapp.com",
		StorageBucket: "wedding-website-dc15b",
		AppID:         "1:922089864980:web:9c8557940e85b0799f8c01",
	}
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	// PublicURL is the address guests reach the site on, photo URLs are built from it
	PublicURL string `envconfig:"SERVER_PUBLIC_URL" default:"http://localhost:8080"`
}

// SiteConfig points at an optional YAML file replacing the built-in site copy
type SiteConfig struct {
	ContentFile string `envconfig:"SITE_CONTENT_FILE"`
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" required:"true"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" required:"true"`
	// BucketName overrides the storage bucket of the service config
	BucketName string `envconfig:"MINIO_BUCKET_NAME"`
	// PublicBaseURL, when set, serves objects straight from the bucket instead of through the app
	PublicBaseURL string `envconfig:"MINIO_PUBLIC_BASE_URL"`
	UseSSL        bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type FileUploadConfig struct {
	MaxSize int64 `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"10485760"` // 10MB
}

// GateMode selects what the access gate protects
type GateMode string

const (
	GateModeGallery GateMode = "gallery"
	GateModeUpload  GateMode = "upload"
)

type GateConfig struct {
	Password string   `envconfig:"GATE_PASSWORD" default:"sunshine"`
	Mode     GateMode `envconfig:"GATE_MODE" default:"gallery"`
}

type PageConfig struct {
	IdleTTL    time.Duration `envconfig:"PAGE_IDLE_TTL" default:"30m"`
	SweepEvery time.Duration `envconfig:"PAGE_SWEEP_EVERY" default:"5m"`
	CookieName string        `envconfig:"PAGE_COOKIE_NAME" default:"page_id"`
}

type NATSConfig struct {
	URL           string `envconfig:"NATS_URL" required:"true"`
	StreamName    string `envconfig:"NATS_STREAM_NAME" default:"WEDDING_PHOTOS"`
	SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"photos"`
	ClientName    string `envconfig:"NATS_CLIENT_NAME" default:"wedding-site"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// Bucket returns the object storage bucket to use
func (c *Config) Bucket() string {
	if c.Minio.BucketName != "" {
		return c.Minio.BucketName
	}
	return c.App.Service.StorageBucket
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return applyDefaults(&cfg)
}

// Process fills a single section of the configuration from the environment
func Process(section any) error {
	return envconfig.Process("", section)
}

func applyDefaults(cfg *Config) (*Config, error) {
	if cfg.App.Service.IsZero() {
		cfg.App.Service = DefaultServiceConfig()
	}
	if cfg.App.AppID == "" {
		cfg.App.AppID = "default-app-id"
	}

	switch cfg.Gate.Mode {
	case GateModeGallery, GateModeUpload:
	default:
		return nil, fmt.Errorf("invalid GATE_MODE %q", cfg.Gate.Mode)
	}

	return cfg, nil
}
