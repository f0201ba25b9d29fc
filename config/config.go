package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Image host providers
const (
	ImageHostNone       = "none"
	ImageHostCloudinary = "cloudinary"
	ImageHostS3         = "s3"
	ImageHostMinIO      = "minio"
)

const megabyte = 1024 * 1024

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	API           APIConfig
	Auth          AuthConfig
	ImageHost     ImageHostConfig
	Upload        UploadConfig
	Sandbox       SandboxConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

// APIConfig points the dashboard at the marketplace backend.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// AuthConfig selects where the bearer credential is read from. Exactly one
// source is used, checked in the order Token, TokenFile, TokenEnv.
type AuthConfig struct {
	Token     string
	TokenFile string
	TokenEnv  string
}

type ImageHostConfig struct {
	Provider   string
	Cloudinary CloudinaryConfig
	S3         S3Config
	MinIO      MinIOConfig
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string
	Folder       string
	BaseURL      string
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
	KeyPrefix       string
}

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	BucketName    string
	PublicBaseURL string
	KeyPrefix     string
}

// UploadConfig holds the per-call-site batch limits.
type UploadConfig struct {
	EquipmentMaxImages   int
	EquipmentMaxBytes    int64
	CVMaxBytes           int64
	CertificatesMaxBytes int64
}

type SandboxConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTLHours int
	SeedUsers     int
	SeedEquipment int
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	StatsTTLSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8090")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("API_BASE_URL", "http://localhost:8090/api/v1")
	v.SetDefault("API_TIMEOUT_SECONDS", 30)
	v.SetDefault("AUTH_TOKEN_ENV", "EQUIPSKILL_TOKEN")
	v.SetDefault("IMAGE_HOST", ImageHostNone)
	v.SetDefault("CLOUDINARY_BASE_URL", "https://api.cloudinary.com/v1_1")
	v.SetDefault("CLOUDINARY_FOLDER", "equipskill")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_KEY_PREFIX", "equipment")
	v.SetDefault("MINIO_KEY_PREFIX", "equipment")
	v.SetDefault("UPLOAD_EQUIPMENT_MAX_IMAGES", 5)
	v.SetDefault("UPLOAD_EQUIPMENT_MAX_BYTES", 10*megabyte)
	v.SetDefault("UPLOAD_CV_MAX_BYTES", 5*megabyte)
	v.SetDefault("UPLOAD_CERTIFICATES_MAX_BYTES", 10*megabyte)
	v.SetDefault("JWT_ISSUER", "equipskill-sandbox")
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("SANDBOX_SEED_USERS", 0)
	v.SetDefault("SANDBOX_SEED_EQUIPMENT", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "equipskill-dashboard")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "equipskill")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "equipskill-sandbox")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("STATS_CACHE_TTL", 600)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
			TimeoutSeconds: v.GetInt("API_TIMEOUT_SECONDS"),
		},
		Auth: AuthConfig{
			Token:     v.GetString("AUTH_TOKEN"),
			TokenFile: v.GetString("AUTH_TOKEN_FILE"),
			TokenEnv:  v.GetString("AUTH_TOKEN_ENV"),
		},
		ImageHost: ImageHostConfig{
			Provider: strings.ToLower(v.GetString("IMAGE_HOST")),
			Cloudinary: CloudinaryConfig{
				CloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
				UploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
				APIKey:       v.GetString("CLOUDINARY_API_KEY"),
				APISecret:    v.GetString("CLOUDINARY_API_SECRET"),
				Folder:       v.GetString("CLOUDINARY_FOLDER"),
				BaseURL:      v.GetString("CLOUDINARY_BASE_URL"),
			},
			S3: S3Config{
				AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
				BucketName:      v.GetString("S3_BUCKET_NAME"),
				Endpoint:        v.GetString("S3_ENDPOINT"),
				Region:          v.GetString("S3_REGION"),
				PublicBaseURL:   v.GetString("S3_PUBLIC_BASE_URL"),
				KeyPrefix:       v.GetString("S3_KEY_PREFIX"),
			},
			MinIO: MinIOConfig{
				Endpoint:      v.GetString("MINIO_ENDPOINT"),
				AccessKey:     v.GetString("MINIO_ACCESS_KEY"),
				SecretKey:     v.GetString("MINIO_SECRET_KEY"),
				UseSSL:        v.GetBool("MINIO_USE_SSL"),
				BucketName:    v.GetString("MINIO_BUCKET_NAME"),
				PublicBaseURL: v.GetString("MINIO_PUBLIC_BASE_URL"),
				KeyPrefix:     v.GetString("MINIO_KEY_PREFIX"),
			},
		},
		Upload: UploadConfig{
			EquipmentMaxImages:   v.GetInt("UPLOAD_EQUIPMENT_MAX_IMAGES"),
			EquipmentMaxBytes:    v.GetInt64("UPLOAD_EQUIPMENT_MAX_BYTES"),
			CVMaxBytes:           v.GetInt64("UPLOAD_CV_MAX_BYTES"),
			CertificatesMaxBytes: v.GetInt64("UPLOAD_CERTIFICATES_MAX_BYTES"),
		},
		Sandbox: SandboxConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			JWTIssuer:     v.GetString("JWT_ISSUER"),
			TokenTTLHours: v.GetInt("TOKEN_TTL_HOURS"),
			SeedUsers:     v.GetInt("SANDBOX_SEED_USERS"),
			SeedEquipment: v.GetInt("SANDBOX_SEED_EQUIPMENT"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			StatsTTLSeconds: v.GetInt("STATS_CACHE_TTL"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.ImageHost.Provider {
	case "", ImageHostNone:
	case ImageHostCloudinary:
		cld := c.ImageHost.Cloudinary
		if cld.CloudName == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required when IMAGE_HOST=cloudinary")
		}
		signed := cld.APIKey != "" && cld.APISecret != ""
		if !signed && cld.UploadPreset == "" {
			return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET is required for unsigned uploads")
		}
	case ImageHostS3:
		if c.ImageHost.S3.BucketName == "" {
			return fmt.Errorf("S3_BUCKET_NAME is required when IMAGE_HOST=s3")
		}
		if c.ImageHost.S3.AccessKeyID == "" || c.ImageHost.S3.SecretAccessKey == "" {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when IMAGE_HOST=s3")
		}
	case ImageHostMinIO:
		if c.ImageHost.MinIO.Endpoint == "" || c.ImageHost.MinIO.BucketName == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET_NAME are required when IMAGE_HOST=minio")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_HOST %q", c.ImageHost.Provider)
	}

	if c.Upload.EquipmentMaxImages <= 0 {
		return fmt.Errorf("UPLOAD_EQUIPMENT_MAX_IMAGES must be positive")
	}
	if c.Upload.EquipmentMaxBytes <= 0 || c.Upload.CVMaxBytes <= 0 || c.Upload.CertificatesMaxBytes <= 0 {
		return fmt.Errorf("upload byte limits must be positive")
	}

	if c.IsProduction() && c.Sandbox.JWTSecret == "" && c.Sandbox.SeedUsers > 0 {
		return fmt.Errorf("JWT_SECRET is required to seed sandbox users in production")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
