package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Model   ModelConfig   `mapstructure:"model"`
	Service ServiceConfig `mapstructure:"service"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig controls where the classifier is looked up and how it runs.
type ModelConfig struct {
	// Candidates are model description locations (file paths or http(s) URLs), probed in order.
	Candidates []string `mapstructure:"candidates"`
	// Direct are model files tried when no description could be used.
	Direct              []string      `mapstructure:"direct"`
	OnnxLibraryPath     string        `mapstructure:"onnx_library_path"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	FallbackSeed        int64         `mapstructure:"fallback_seed"`
	Threads             int           `mapstructure:"threads"`
	Preload             bool          `mapstructure:"preload"`
}

type ServiceConfig struct {
	// Simulate skips model loading entirely and serves randomized diagnoses.
	Simulate bool  `mapstructure:"simulate"`
	Seed     int64 `mapstructure:"seed"`
	// Language selects the built-in disease catalog: "en" or "id".
	Language string `mapstructure:"language"`
}

const envPrefix = "PLANTDX"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "plantdx-api")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("model.candidates", []string{
		"models/plant_disease/model.json",
		"./models/plant_disease/model.json",
		"../models/plant_disease/model.json",
		"dist/models/plant_disease/model.json",
	})
	v.SetDefault("model.direct", []string{
		"models/plant_disease/model.onnx",
		"models/plant_disease/model.tflite",
	})
	v.SetDefault("model.fetch_timeout", 15*time.Second)
	v.SetDefault("model.confidence_threshold", 0.1)
	v.SetDefault("model.fallback_seed", 0)
	v.SetDefault("model.threads", 1)
	v.SetDefault("model.preload", false)

	v.SetDefault("service.simulate", false)
	v.SetDefault("service.seed", 0)
	v.SetDefault("service.language", "en")
}

// Load reads configPath (YAML) on top of the defaults. An empty path uses defaults and
// PLANTDX_* environment variables only, e.g. PLANTDX_SERVER_PORT=9000.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values the service cannot run without.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Model.ConfidenceThreshold < 0 || c.Model.ConfidenceThreshold > 1 {
		return fmt.Errorf("model.confidence_threshold must be within [0, 1], got %v", c.Model.ConfidenceThreshold)
	}
	if c.Model.Threads < 1 {
		return fmt.Errorf("model.threads must be at least 1")
	}
	if c.Service.Language != "en" && c.Service.Language != "id" {
		return fmt.Errorf("service.language must be en or id, got %q", c.Service.Language)
	}
	return nil
}
