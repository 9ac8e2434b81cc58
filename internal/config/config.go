package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port     string `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel string `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error"`
	// LogFormat is "json" or "console".
	LogFormat      string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`
	MaxUploadBytes int    `mapstructure:"MAX_UPLOAD_BYTES" validate:"gt=0"`

	MongoURI      string `mapstructure:"MONGO_URI" validate:"required"`
	MongoDatabase string `mapstructure:"MONGO_DB" validate:"required"`

	JWTSecret string        `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"TOKEN_TTL" validate:"gt=0"`

	Storage StorageConfig `mapstructure:",squash"`
}

type StorageConfig struct {
	Driver    string        `mapstructure:"STORAGE_DRIVER" validate:"required,oneof=minio s3"`
	Endpoint  string        `mapstructure:"STORAGE_ENDPOINT" validate:"required_if=Driver minio"`
	AccessKey string        `mapstructure:"STORAGE_ACCESS_KEY" validate:"required"`
	SecretKey string        `mapstructure:"STORAGE_SECRET_KEY" validate:"required"`
	Bucket    string        `mapstructure:"STORAGE_BUCKET" validate:"required"`
	Region    string        `mapstructure:"STORAGE_REGION"`
	UseSSL    bool          `mapstructure:"STORAGE_USE_SSL"`
	PublicURL string        `mapstructure:"STORAGE_PUBLIC_URL" validate:"omitempty,url"`
	Prefix    string        `mapstructure:"STORAGE_PREFIX"`
	Timeout   time.Duration `mapstructure:"STORAGE_TIMEOUT" validate:"gt=0"`
	// DownloadURLTTL bounds how long a signed download link is valid.
	DownloadURLTTL time.Duration `mapstructure:"DOWNLOAD_URL_TTL" validate:"gt=0,max=168h"`
}

var defaults = map[string]any{
	"PORT":               "5000",
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "json",
	"MAX_UPLOAD_BYTES":   100 << 20,
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DB":           "file_share",
	"JWT_SECRET":         "",
	"TOKEN_TTL":          time.Hour,
	"STORAGE_DRIVER":     "minio",
	"STORAGE_ENDPOINT":   "localhost:9000",
	"STORAGE_ACCESS_KEY": "minioadmin",
	"STORAGE_SECRET_KEY": "minioadmin",
	"STORAGE_BUCKET":     "file-share-app",
	"STORAGE_REGION":     "",
	"STORAGE_USE_SSL":    false,
	"STORAGE_PUBLIC_URL": "",
	"STORAGE_PREFIX":     "file-share-app",
	"STORAGE_TIMEOUT":    30 * time.Second,
	"DOWNLOAD_URL_TTL":   15 * time.Minute,
}

// Load reads the .env file in the working directory if there is one, then the
// process environment, and validates the result. envFile reports whether a
// .env file was read.
func Load() (cfg *Config, envFile bool, err error) {
	envFile = godotenv.Load() == nil

	cfg, err = FromEnv()
	if err != nil {
		return nil, envFile, err
	}
	return cfg, envFile, nil
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
