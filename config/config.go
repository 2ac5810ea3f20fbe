// Viewer configuration with YAML overrides layered on defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "200ms" or "1.5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config carries the tunables of the viewer and export pipeline.
type Config struct {
	// MaxZoom caps the zoom scale. The minimum is computed per chart.
	MaxZoom float64 `yaml:"maxZoom"`
	// AnimationDelay postpones re-framing after a non-initial render.
	AnimationDelay Duration `yaml:"animationDelay"`
	// AnimationDuration times transition animations and scroll tweens.
	AnimationDuration Duration `yaml:"animationDuration"`
	// ExportScale is the raster oversampling factor for PNG/PDF.
	ExportScale float64 `yaml:"exportScale"`
	// Locale selects label formatting in the detailed renderer.
	Locale string `yaml:"locale"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxZoom:           2,
		AnimationDelay:    Duration(200 * time.Millisecond),
		AnimationDuration: Duration(500 * time.Millisecond),
		ExportScale:       2,
		Locale:            "en",
		LogLevel:          "info",
	}
}

// Load reads a YAML config file over the defaults. A missing file is
// not an error, the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
