package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"karolbroda.com/coverglow/internal/colors"
	"karolbroda.com/coverglow/internal/sampler"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultMprisService = "org.mpris.MediaPlayer2.spotify"
	DefaultFetchTimeout = 5 * time.Second
	PollInterval        = 500 * time.Millisecond

	appDirName = "coverglow"
	envPrefix  = "COVERGLOW_"
)

const (
	SourceStatic = "static"
	SourceMPRIS  = "mpris"
)

type Config struct {
	Source       string         `toml:"source"`
	MprisService string         `toml:"mpris_service"`
	Sampling     SamplingConfig `toml:"sampling"`
	Display      DisplayConfig  `toml:"display"`
	Log          LogConfig      `toml:"log"`
}

type SamplingConfig struct {
	Mode         string   `toml:"mode"`
	Stride       int      `toml:"stride"`
	DefaultColor string   `toml:"default_color"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

type DisplayConfig struct {
	ShowArt bool `toml:"show_art"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// Duration lets TOML carry "5s"-style strings.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load builds the config from defaults, then the TOML file at path (if it
// exists), then a .env file in the working directory, then the environment.
// An empty path means the default location.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// a missing .env is normal, a broken one is not
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Source = getEnvOrDefault("SOURCE", c.Source)
	c.MprisService = getEnvOrDefault("MPRIS_SERVICE", c.MprisService)
	c.Sampling.Mode = getEnvOrDefault("MODE", c.Sampling.Mode)
	c.Sampling.DefaultColor = getEnvOrDefault("DEFAULT_COLOR", c.Sampling.DefaultColor)
	c.Log.File = getEnvOrDefault("LOG_FILE", c.Log.File)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)

	if stride, err := strconv.Atoi(getEnvOrDefault("STRIDE", "")); err == nil {
		c.Sampling.Stride = stride
	}
	if timeout, err := time.ParseDuration(getEnvOrDefault("FETCH_TIMEOUT", "")); err == nil {
		c.Sampling.FetchTimeout.Duration = timeout
	}

	switch getEnvOrDefault("SHOW_ART", "") {
	case "1", "true", "yes":
		c.Display.ShowArt = true
	case "0", "false", "no":
		c.Display.ShowArt = false
	}
}

func (c *Config) Validate() error {
	switch c.Source {
	case SourceStatic, SourceMPRIS:
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}

	if c.MprisService == "" {
		c.MprisService = DefaultMprisService
	}

	if _, err := sampler.ParseMode(c.Sampling.Mode); err != nil {
		return err
	}
	if c.Sampling.Stride < 1 {
		return fmt.Errorf("stride must be positive, got %d", c.Sampling.Stride)
	}
	if _, err := colors.Parse(c.Sampling.DefaultColor); err != nil {
		return err
	}
	if c.Sampling.FetchTimeout.Duration <= 0 {
		c.Sampling.FetchTimeout.Duration = DefaultFetchTimeout
	}

	return nil
}

func (c *Config) SamplingMode() sampler.Mode {
	mode, _ := sampler.ParseMode(c.Sampling.Mode)
	return mode
}

func (c *Config) DefaultColor() sampler.Color {
	col, err := colors.Parse(c.Sampling.DefaultColor)
	if err != nil {
		return colors.MustParse(colors.DefaultBackground)
	}
	return col
}

func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// DefaultPath is $XDG_CONFIG_HOME/coverglow/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, "config.toml")
}

// DefaultLogPath puts the log under the user cache directory.
func DefaultLogPath() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName, "coverglow.log")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDirName, "coverglow.log")
}

// CreateFile writes the example config to path, refusing to overwrite.
func CreateFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getEnvOrDefault(key string, fallback string) string {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return fallback
	}
	return value
}
