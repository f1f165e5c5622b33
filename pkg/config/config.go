package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Storage  StorageConfig  `yaml:"storage"`
	Sampling SamplingConfig `yaml:"sampling"`
	Tare     TareConfig     `yaml:"tare"`
	Display  DisplayConfig  `yaml:"display"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// StorageConfig contains durable storage configuration.
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`   // Directory holding session files (removable card mount point)
	StateFile string `yaml:"state_file"` // Persistent state file (session index, calibration factor)
}

// SamplingConfig contains sampling parameters.
type SamplingConfig struct {
	Interval  time.Duration `yaml:"interval"`  // Minimum inter-sample interval (0 = accept every reading)
	Smoothing int           `yaml:"smoothing"` // Moving average window over raw readings (0 = disabled)
}

// TareConfig contains tare (zero-offset) parameters.
type TareConfig struct {
	Timeout time.Duration `yaml:"timeout"` // Bound on the boot-time tare; exceeding it is fatal
}

// DisplayConfig contains character display dimensions.
type DisplayConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	NoiseLevel   float64       `yaml:"noise_level"`   // Noise level in raw counts
	PeakForce    float64       `yaml:"peak_force"`    // Simulated peak thrust in raw counts
	BurnDuration time.Duration `yaml:"burn_duration"` // Simulated burn duration
	BurnPeriod   time.Duration `yaml:"burn_period"`   // Time between simulated burns
	SampleRate   time.Duration `yaml:"sample_rate"`   // Sample rate
	TareDelay    time.Duration `yaml:"tare_delay"`    // Simulated tare settling time
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
		},
		Storage: StorageConfig{
			DataDir:   "data",
			StateFile: "state.yaml",
		},
		Sampling: SamplingConfig{
			Interval:  0, // Accept every reading the amplifier produces
			Smoothing: 0,
		},
		Tare: TareConfig{
			Timeout: 5 * time.Second,
		},
		Display: DisplayConfig{
			Rows: 4,
			Cols: 20,
		},
		Mock: MockConfig{
			NoiseLevel:   25,
			PeakForce:    150000,
			BurnDuration: 3 * time.Second,
			BurnPeriod:   15 * time.Second,
			SampleRate:   12 * time.Millisecond, // ~80 samples per second (HX711 fast mode)
			TareDelay:    0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Storage.DataDir == "" {
		c.Storage.DataDir = def.Storage.DataDir
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = def.Storage.StateFile
	}

	if c.Tare.Timeout == 0 {
		c.Tare.Timeout = def.Tare.Timeout
	}

	if c.Display.Rows == 0 {
		c.Display.Rows = def.Display.Rows
	}
	if c.Display.Cols == 0 {
		c.Display.Cols = def.Display.Cols
	}

	if c.Mock.NoiseLevel == 0 {
		c.Mock.NoiseLevel = def.Mock.NoiseLevel
	}
	if c.Mock.PeakForce == 0 {
		c.Mock.PeakForce = def.Mock.PeakForce
	}
	if c.Mock.BurnDuration == 0 {
		c.Mock.BurnDuration = def.Mock.BurnDuration
	}
	if c.Mock.BurnPeriod == 0 {
		c.Mock.BurnPeriod = def.Mock.BurnPeriod
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
