package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. Values come from the
// YAML file first; secrets can be overridden through TOGETHER_* environment
// variables so credentials stay out of the file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	AWS        AWSConfig        `yaml:"aws"`
	LLM        LLMConfig        `yaml:"llm"`
	Push       PushConfig       `yaml:"push"`
	JWT        JWTConfig        `yaml:"jwt"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" envconfig:"PORT"`
	Host string `yaml:"host" envconfig:"HOST"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	// Driver is one of "postgres", "mongo", "memory".
	Driver   string         `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password" envconfig:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri" envconfig:"MONGO_URI"`
	Database string `yaml:"database"`
}

// CloudinaryConfig holds the unsigned-upload settings for the primary media
// provider. Empty values disable the provider.
type CloudinaryConfig struct {
	CloudName    string `yaml:"cloud_name" envconfig:"CLOUDINARY_CLOUD_NAME"`
	UploadPreset string `yaml:"upload_preset" envconfig:"CLOUDINARY_UPLOAD_PRESET"`
}

// AWSConfig holds the S3 fallback upload settings.
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key" envconfig:"AWS_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"AWS_SECRET_KEY"`
	Endpoint  string `yaml:"endpoint"`
}

// LLMConfig holds provider settings for the LLM adapter. With neither
// configured the adapter serves deterministic mock responses.
type LLMConfig struct {
	// Endpoint is an OpenAI-compatible chat-completions URL.
	Endpoint string `yaml:"endpoint" envconfig:"LLM_ENDPOINT"`
	APIKey   string `yaml:"api_key" envconfig:"LLM_API_KEY"`
	Model    string `yaml:"model"`

	GeminiAPIKey string `yaml:"gemini_api_key" envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `yaml:"gemini_model"`
}

// PushConfig holds APNs settings; empty cert path disables push.
type PushConfig struct {
	CertFile     string `yaml:"cert_file"`
	CertPassword string `yaml:"cert_password" envconfig:"PUSH_CERT_PASSWORD"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret" envconfig:"JWT_SECRET"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides. A missing file is not fatal: the env-only path is enough for
// the memory driver and mock integrations.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to defaults + env
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process("together", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8787
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.GeminiModel == "" {
		c.LLM.GeminiModel = "gemini-2.0-flash"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DSN returns the PostgreSQL connection string
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
