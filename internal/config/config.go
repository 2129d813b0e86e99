package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Services  ServicesConfig  `mapstructure:"services" toml:"services"`
	Dashboard DashboardConfig `mapstructure:"dashboard" toml:"dashboard"`
	HTTP      HTTPConfig      `mapstructure:"http" toml:"http"`
	Tracing   TracingConfig   `mapstructure:"tracing" toml:"tracing"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
	Journal   JournalConfig   `mapstructure:"journal" toml:"journal"`
	Mock      MockConfig      `mapstructure:"mock" toml:"mock"`
}

// ServicesConfig holds the base URLs of the three backends.
type ServicesConfig struct {
	UserURL    string `mapstructure:"user_url" toml:"user_url"`
	PaymentURL string `mapstructure:"payment_url" toml:"payment_url"`
	OrderURL   string `mapstructure:"order_url" toml:"order_url"`
}

// DashboardConfig holds the tracing dashboard address.
type DashboardConfig struct {
	URL string `mapstructure:"url" toml:"url"`
}

// HTTPConfig holds outbound client settings. A zero timeout means none.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// TracingConfig holds OpenTelemetry export settings.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" toml:"endpoint"`
	ServiceName string `mapstructure:"service_name" toml:"service_name"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path" toml:"path"`
	Level string `mapstructure:"level" toml:"level"`
}

// JournalConfig holds the run journal location. Empty path disables it.
type JournalConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// MockConfig holds listen addresses for the echo backends.
type MockConfig struct {
	UserAddr    string `mapstructure:"user_addr" toml:"user_addr"`
	PaymentAddr string `mapstructure:"payment_addr" toml:"payment_addr"`
	OrderAddr   string `mapstructure:"order_addr" toml:"order_addr"`
}

// configFile is the on-disk TOML layout written by WriteDefault.
type configFile struct {
	Services  ServicesConfig  `toml:"services"`
	Dashboard DashboardConfig `toml:"dashboard"`
	HTTP      struct {
		Timeout string `toml:"timeout"`
	} `toml:"http"`
	Tracing TracingConfig `toml:"tracing"`
	Log     LogConfig     `toml:"log"`
	Journal JournalConfig `toml:"journal"`
	Mock    MockConfig    `toml:"mock"`
}

const envPrefix = "TRACEWALK"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Services: ServicesConfig{
			UserURL:    "http://localhost:8080",
			PaymentURL: "http://localhost:8081",
			OrderURL:   "http://localhost:8082",
		},
		Dashboard: DashboardConfig{URL: "http://localhost:16686/"},
		Tracing:   TracingConfig{ServiceName: "tracewalk"},
		Log: LogConfig{
			Path:  filepath.Join(stateDir(), "tracewalk.log"),
			Level: "info",
		},
		Mock: MockConfig{
			UserAddr:    "localhost:8080",
			PaymentAddr: "localhost:8081",
			OrderAddr:   "localhost:8082",
		},
	}
}

// Load reads configuration from file and env. Env var overrides use prefix TRACEWALK_.
func Load() (Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("services.user_url", d.Services.UserURL)
	v.SetDefault("services.payment_url", d.Services.PaymentURL)
	v.SetDefault("services.order_url", d.Services.OrderURL)
	v.SetDefault("dashboard.url", d.Dashboard.URL)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("journal.path", d.Journal.Path)
	v.SetDefault("mock.user_addr", d.Mock.UserAddr)
	v.SetDefault("mock.payment_addr", d.Mock.PaymentAddr)
	v.SetDefault("mock.order_addr", d.Mock.OrderAddr)

	v.SetConfigType("toml")

	cfgPath := os.Getenv(envPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist; the default location is optional
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// DefaultPath is where Load looks when TRACEWALK_CONFIG is unset.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// WriteDefault writes the built-in configuration as TOML. It never
// overwrites an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	d := Default()
	file := configFile{
		Services:  d.Services,
		Dashboard: d.Dashboard,
		Tracing:   d.Tracing,
		Log:       d.Log,
		Journal:   d.Journal,
		Mock:      d.Mock,
	}
	// durations are written in the string form viper decodes
	file.HTTP.Timeout = d.HTTP.Timeout.String()

	if _, err := fmt.Fprintln(f, "# tracewalk configuration. Every key may be overridden with TRACEWALK_<SECTION>_<KEY>."); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(file); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.Getenv("HOME"), ".config", "tracewalk")
	}
	return filepath.Join(dir, "tracewalk")
}

func stateDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "state", "tracewalk")
}
