package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/mizutori/pagelens/internal/merge"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Detector: DetectorConfig{
			Endpoint:       "http://127.0.0.1:9090/detect",
			Language:       "ja",
			TimeoutSeconds: 120,
		},
		Pipeline: PipelineConfig{
			FetchTimeoutSeconds: 60,
			MaxAttempts:         3,
			RetryDelaySeconds:   1,
		},
		Jobs: JobsConfig{
			PageConcurrency: 6,
			SaveEvery:       5,
		},
		Merge: merge.DefaultConfig(),
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# PageLens configuration
# detector.endpoint must point at a running line-detection service.
# Merge thresholds are relative to each sub-band's robust median font size;
# the defaults are calibrated for manga pages and rarely need tuning.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
