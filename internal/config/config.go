package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// localStackEndpoint is used for every AWS client when STAGE=local.
const localStackEndpoint = "https://localhost.localstack.cloud:4566"

// Supported backends.
const (
	MetadataBackendDynamoDB = "dynamodb"
	MetadataBackendPostgres = "postgres"

	ObjectStoreBackendS3    = "s3"
	ObjectStoreBackendMinIO = "minio"
)

// Config aggregates runtime configuration for the upload metadata handlers.
type Config struct {
	Stage    string
	Server   ServerConfig
	Backends BackendConfig
	AWS      AWSConfig
	DynamoDB DynamoDBConfig
	S3       S3Config
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the local HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig selects the metadata store and object store implementations.
type BackendConfig struct {
	Metadata    string
	ObjectStore string
}

// AWSConfig carries settings shared by every AWS SDK client.
type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoDBConfig describes the metadata table.
type DynamoDBConfig struct {
	Table string
	// PageSize caps items per Scan call; zero leaves paging to the service.
	PageSize int
	// EnsureTable creates the table on startup when it is missing.
	EnsureTable bool
}

// S3Config describes the upload bucket on S3.
type S3Config struct {
	Bucket       string
	UsePathStyle bool
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	PageSize int
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// UploadConfig governs upload authorizations.
type UploadConfig struct {
	URLTTL time.Duration
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	stage := strings.ToLower(getString("STAGE", "dev"))

	cfg := Config{
		Stage: stage,
		Server: ServerConfig{
			Host:         getString("FILEMETA_API_HOST", "0.0.0.0"),
			Port:         getInt("FILEMETA_API_PORT", 8080),
			ReadTimeout:  getDuration("FILEMETA_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("FILEMETA_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("FILEMETA_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Backends: BackendConfig{
			Metadata:    strings.ToLower(getString("METADATA_BACKEND", MetadataBackendDynamoDB)),
			ObjectStore: strings.ToLower(getString("OBJECT_STORE_BACKEND", ObjectStoreBackendS3)),
		},
		AWS: loadAWSConfig(stage),
		DynamoDB: DynamoDBConfig{
			Table:       getString("DYNAMODB_TABLE", "file-metadata"),
			PageSize:    getInt("DYNAMODB_SCAN_PAGE_SIZE", 0),
			EnsureTable: getBool("DYNAMODB_ENSURE_TABLE", stage == "local"),
		},
		S3: S3Config{
			Bucket:       getString("S3_BUCKET", "file-uploads"),
			UsePathStyle: getBool("S3_USE_PATH_STYLE", stage == "local"),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "filemeta_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "filemeta"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			PageSize: getInt("POSTGRES_SCAN_PAGE_SIZE", 100),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "filemeta"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "file-uploads"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Upload: UploadConfig{
			URLTTL: getDuration("UPLOAD_URL_TTL", time.Hour),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: getString("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backends.Metadata {
	case MetadataBackendDynamoDB, MetadataBackendPostgres:
	default:
		return fmt.Errorf("unsupported METADATA_BACKEND %q", c.Backends.Metadata)
	}
	switch c.Backends.ObjectStore {
	case ObjectStoreBackendS3, ObjectStoreBackendMinIO:
	default:
		return fmt.Errorf("unsupported OBJECT_STORE_BACKEND %q", c.Backends.ObjectStore)
	}
	if c.Upload.URLTTL <= 0 {
		return fmt.Errorf("UPLOAD_URL_TTL must be positive, got %s", c.Upload.URLTTL)
	}
	if c.DynamoDB.PageSize < 0 {
		return fmt.Errorf("DYNAMODB_SCAN_PAGE_SIZE must not be negative, got %d", c.DynamoDB.PageSize)
	}
	if c.Postgres.PageSize <= 0 {
		return fmt.Errorf("POSTGRES_SCAN_PAGE_SIZE must be positive, got %d", c.Postgres.PageSize)
	}
	return nil
}

// Bucket returns the upload bucket name of the selected object store backend.
func (c Config) Bucket() string {
	if c.Backends.ObjectStore == ObjectStoreBackendMinIO {
		return c.MinIO.Bucket
	}
	return c.S3.Bucket
}

func loadAWSConfig(stage string) AWSConfig {
	endpoint := getString("AWS_ENDPOINT_URL", "")
	accessKey := getString("FILEMETA_AWS_ACCESS_KEY_ID", "")
	secretKey := getString("FILEMETA_AWS_SECRET_ACCESS_KEY", "")

	if stage == "local" {
		if endpoint == "" {
			endpoint = localStackEndpoint
		}
		// LocalStack accepts any credentials.
		if accessKey == "" {
			accessKey, secretKey = "test", "test"
		}
	}

	return AWSConfig{
		Region:          getString("AWS_REGION", "us-east-1"),
		Endpoint:        endpoint,
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
	}
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
