package config

import (
	"os"
	"strings"

	"github.com/Ckrest/graph-lib/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultInterval = 1000 // ms
	defaultWidth    = 800
	defaultHeight   = 400
	defaultHistory  = 60
	defaultWindow   = 24 // hours
)

// Config drives the graphctl binary: which source feeds the chart, how
// it is parsed, and where the rendered output goes.
type Config struct {
	// Source selects the provider: command, gpu, nvml, sqlite or demo.
	Source string
	// Chart selects the renderer: line or gauge.
	Chart string
	// Interval is the refresh cadence in milliseconds.
	Interval int
	// Output is the SVG file rewritten on every update.
	Output string
	Width  int
	Height int

	Title string
	Unit  string

	// Command source
	Command string
	Parse   string
	KeyPath string `mapstructure:"key_path"`
	Pattern string
	History int

	// GPU and NVML sources
	Metric   string
	GPUIndex int `mapstructure:"gpu_index"`

	// SQLite source
	Database    string
	Table       string
	ValueColumn string `mapstructure:"value_column"`
	TimeColumn  string `mapstructure:"time_column"`
	WindowHours int    `mapstructure:"window_hours"`
	Where       string
	Limit       int

	LogLevel string `mapstructure:"log_level"`
	Debug    bool
	Verbose  bool
}

// Load reads configuration from flags, the GRAPHCTL_CONFIG file and
// environment variables, validates it and applies defaults.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()

	fs := pflag.NewFlagSet("graphctl", pflag.ContinueOnError)
	fs.String("config", "", "Path to configuration file")
	fs.String("source", "", "Data source: command, gpu, nvml, sqlite, demo")
	fs.String("chart", "", "Chart type: line or gauge")
	fs.String("command", "", "Shell command to poll")
	fs.String("output", "", "SVG output path")
	fs.Int("interval", 0, "Refresh interval in milliseconds")
	fs.String("log-level", "", "Log level: debug, info, warning, error")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("verbose", false, "Enable verbose logging")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v.SetDefault("source", "demo")
	v.SetDefault("chart", "line")
	v.SetDefault("interval", defaultInterval)
	v.SetDefault("output", "graphctl.svg")
	v.SetDefault("width", defaultWidth)
	v.SetDefault("height", defaultHeight)
	v.SetDefault("parse", "scalar")
	v.SetDefault("history", defaultHistory)
	v.SetDefault("time_column", "timestamp")
	v.SetDefault("window_hours", defaultWindow)
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix("GRAPHCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath, _ := fs.GetString("config")
	if configPath == "" {
		configPath = os.Getenv("GRAPHCTL_CONFIG")
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("graphctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/graphctl")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
		}
	}

	// Flags set on the command line override the file.
	fs.Visit(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		v.Set(key, f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that cannot wait until the
// provider is constructed.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, struct {
			Level string
		}{Level: c.LogLevel})
	}

	switch c.Source {
	case "command", "gpu", "nvml", "sqlite", "demo":
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Source string
		}{Source: c.Source})
	}

	switch c.Chart {
	case "line", "gauge":
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Chart string
		}{Chart: c.Chart})
	}

	if c.Interval < 0 {
		return errFactory.New(errors.ErrInvalidInterval)
	}

	return nil
}
