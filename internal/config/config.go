package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config represents the screenrec configuration
type Config struct {
	OutputDir   string        `mapstructure:"output_dir"`
	Framerate   int           `mapstructure:"framerate"`
	Quality     string        `mapstructure:"quality"`
	StopTimeout time.Duration `mapstructure:"stop_timeout"`
	Audio       Audio         `mapstructure:"audio"`
	Camera      Camera        `mapstructure:"camera"`
}

// Audio contains audio capture configuration
type Audio struct {
	// Devices is the ordered list of ALSA devices tried by the split-stream
	// fallback. Combined capture always uses the first entry.
	Devices []string      `mapstructure:"devices"`
	Grace   time.Duration `mapstructure:"grace"`
}

// Camera contains camera preview configuration
type Camera struct {
	Device   string        `mapstructure:"device"`
	Width    int           `mapstructure:"width"`
	Height   int           `mapstructure:"height"`
	Interval time.Duration `mapstructure:"interval"`
}

// File overrides the config file location when set, typically from the
// --config flag.
var File string

// Load loads the configuration from ~/.screenrec/config.yaml or returns defaults
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	if File != "" {
		viper.SetConfigFile(File)
	} else {
		configDir := filepath.Join(home, ".screenrec")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configDir)
	}

	setDefaults()

	// Try to read config file, but don't fail if it doesn't exist
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand ~ in the output directory
	expanded, err := homedir.Expand(cfg.OutputDir)
	if err == nil {
		cfg.OutputDir = expanded
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("output_dir", "~/Videos/Screenrecords")
	viper.SetDefault("framerate", 30)
	viper.SetDefault("quality", "medium")
	viper.SetDefault("stop_timeout", "5s")

	viper.SetDefault("audio.devices", []string{"hw:0,7", "hw:0,6"})
	viper.SetDefault("audio.grace", "3s")

	viper.SetDefault("camera.device", "/dev/video0")
	viper.SetDefault("camera.width", 320)
	viper.SetDefault("camera.height", 240)
	viper.SetDefault("camera.interval", "100ms")
}

// ConfigDir returns the screenrec configuration directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".screenrec"), nil
}

// EnsureOutputDir creates the recording output directory if it doesn't exist
func EnsureOutputDir(cfg *Config) error {
	return os.MkdirAll(cfg.OutputDir, 0755)
}
