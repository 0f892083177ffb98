// Package config loads and hot-reloads service configuration via viper.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mizutori/pagelens/internal/merge"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Detector DetectorConfig `mapstructure:"detector" yaml:"detector"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Jobs     JobsConfig     `mapstructure:"jobs" yaml:"jobs"`
	Merge    merge.Config   `mapstructure:"merge" yaml:"merge"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DetectorConfig holds detection-service client settings.
type DetectorConfig struct {
	// Endpoint is the line-detection service URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	// Language is the hint passed with every detection call.
	Language string `mapstructure:"language" yaml:"language"`
	// TimeoutSeconds bounds each detection call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// Proxy optionally routes detection traffic through a proxy URL.
	Proxy string `mapstructure:"proxy" yaml:"proxy"`
}

// PipelineConfig holds page pipeline settings.
type PipelineConfig struct {
	// FetchTimeoutSeconds bounds each page image download.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds"`
	// MaxAttempts is the per-page retry budget.
	MaxAttempts uint `mapstructure:"max_attempts" yaml:"max_attempts"`
	// RetryDelaySeconds is the base backoff delay between attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
}

// JobsConfig holds chapter job settings.
type JobsConfig struct {
	// PageConcurrency bounds concurrent page pipelines per chapter job.
	PageConcurrency int `mapstructure:"page_concurrency" yaml:"page_concurrency"`
	// SaveEvery is the periodic cache-save interval in completed pages.
	SaveEvery int `mapstructure:"save_every" yaml:"save_every"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("detector", defaults.Detector)
	viper.SetDefault("pipeline", defaults.Pipeline)
	viper.SetDefault("jobs", defaults.Jobs)
	viper.SetDefault("merge", defaults.Merge)

	// Environment variables with PAGELENS_ prefix
	viper.SetEnvPrefix("PAGELENS")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pagelens")
	}

	// Config file is optional
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// MergeConfig returns the current merge calibration. Hot reload makes this
// the live source for the pipeline.
func (cm *Manager) MergeConfig() merge.Config {
	return cm.Get().Merge
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}
