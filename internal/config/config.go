package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/dermascan-api/internal/cache"
	"github.com/Brownie44l1/dermascan-api/internal/history"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
)

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	BodyLimit       string        `yaml:"bodyLimit"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowOrigins    []string      `yaml:"allowOrigins"`
}

type ModelConfig struct {
	Path           string `yaml:"path" validate:"required"`
	MetadataPath   string `yaml:"metadataPath" validate:"required"`
	SharedLibrary  string `yaml:"sharedLibrary"`
	IntraOpThreads int    `yaml:"intraOpThreads" validate:"min=0"`
	ResizeFilter   string `yaml:"resizeFilter" validate:"omitempty,oneof=nearest bilinear bicubic mitchellnetravali lanczos2 lanczos3"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Model   ModelConfig    `yaml:"model"`
	Log     LogConfig      `yaml:"log"`
	Images  imaging.Limits `yaml:"images"`
	Cache   cache.Config   `yaml:"cache"`
	History history.Config `yaml:"history"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			BodyLimit:       "20M",
			ShutdownTimeout: 10 * time.Second,
			AllowOrigins:    []string{"*"},
		},
		Model: ModelConfig{
			Path:         "models/skin_lesion_classifier.onnx",
			MetadataPath: "models/model_metadata.json",
			ResizeFilter: "bilinear",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: history.Config{
			Type:             "sqlite",
			ConnectionString: "data/history.db",
		},
	}
}

// Load reads configPath on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := Default()
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("METADATA_PATH"); v != "" {
		c.Model.MetadataPath = v
	}
	if v := os.Getenv("ONNXRUNTIME_LIB"); v != "" {
		c.Model.SharedLibrary = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Enabled = true
		c.Cache.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("HISTORY_DSN"); v != "" {
		c.History.Enabled = true
		c.History.ConnectionString = v
	}
	return nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
