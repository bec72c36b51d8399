// Package config loads the bridge configuration.
//
// Values come from, in increasing precedence: built-in defaults, a TOML
// config file, a .env file next to it, and MESHBRIDGE_* environment
// variables (MESHBRIDGE_EXCHANGE_PRIMARY_PATH -> exchange.primary_path).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/spaghettifunk/meshbridge/bridge/assets/loaders"
	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/spaghettifunk/meshbridge/bridge/reconcile"
)

const (
	EnvPrefix       = "MESHBRIDGE"
	DefaultFileName = "bridge.toml"
	DefaultExchange = "exchange"
)

// Config is the full bridge configuration.
type Config struct {
	Exchange ExchangeConfig `mapstructure:"exchange" toml:"exchange"`
	Export   ExportConfig   `mapstructure:"export" toml:"export"`
	Import   ImportConfig   `mapstructure:"import" toml:"import"`
	Scene    SceneConfig    `mapstructure:"scene" toml:"scene"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// ExchangeConfig locates the files written by the external tool.
type ExchangeConfig struct {
	// PrimaryPath is the single well-known exchange file.
	PrimaryPath string `mapstructure:"primary_path" toml:"primary_path"`
	// FallbackFolder holds a batch of exchange files.
	FallbackFolder string `mapstructure:"fallback_folder" toml:"fallback_folder"`
	// FileExtension selects batch files, e.g. ".obj".
	FileExtension string `mapstructure:"file_extension" toml:"file_extension"`
	// WatchDebounce is how long a file must be quiet before a watch import.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" toml:"watch_debounce"`
}

type ExportConfig struct {
	Dir       string  `mapstructure:"dir" toml:"dir"`
	Format    string  `mapstructure:"format" toml:"format"`
	Scale     float32 `mapstructure:"scale" toml:"scale"`
	Precision int     `mapstructure:"precision" toml:"precision"`
}

type ImportConfig struct {
	// Orientation is the XYZ rotation in degrees the importer assigns to a
	// new object. [90, 0, 0] converts a Y-up file into a Z-up scene.
	Orientation  []float32 `mapstructure:"orientation" toml:"orientation"`
	PromotedName string    `mapstructure:"promoted_name" toml:"promoted_name"`
}

type SceneConfig struct {
	// Database is the sqlite file holding the headless scene.
	Database string `mapstructure:"database" toml:"database"`
}

type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Exchange: ExchangeConfig{
			PrimaryPath:    filepath.Join(DefaultExchange, "exported.obj"),
			FallbackFolder: filepath.Join(DefaultExchange, "exported"),
			FileExtension:  ".obj",
			WatchDebounce:  500 * time.Millisecond,
		},
		Export: ExportConfig{
			Dir:       DefaultExchange,
			Format:    "obj",
			Scale:     1,
			Precision: loaders.DefaultPrecision,
		},
		Import: ImportConfig{
			Orientation:  []float32{90, 0, 0},
			PromotedName: reconcile.DefaultPromotedName,
		},
		Scene: SceneConfig{
			Database: "scene.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration. path may name a TOML file or be empty, in
// which case bridge.toml in the working directory is used if present.
func Load(path string) (*Config, error) {
	dir := "."
	if path != "" {
		dir = filepath.Dir(path)
	}
	// Ignore error if file doesn't exist
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration as TOML, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config %s already exists", path)
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.Exchange.PrimaryPath == "" {
		return errors.New("exchange.primary_path is required")
	}
	if !strings.HasPrefix(c.Exchange.FileExtension, ".") || len(c.Exchange.FileExtension) < 2 {
		return fmt.Errorf("exchange.file_extension must start with a dot, got %q", c.Exchange.FileExtension)
	}
	if len(c.Import.Orientation) != 3 {
		return fmt.Errorf("import.orientation needs 3 angles, got %d", len(c.Import.Orientation))
	}
	if c.Export.Scale <= 0 {
		return fmt.Errorf("export.scale must be positive, got %v", c.Export.Scale)
	}
	return nil
}

// ImportOrientation returns the configured import rotation in radians.
func (c *Config) ImportOrientation() math.Vec3 {
	o := c.Import.Orientation
	return math.OrientationFromDegrees(o[0], o[1], o[2])
}

func (c *Config) normalize() {
	ext := strings.ToLower(strings.TrimSpace(c.Exchange.FileExtension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Exchange.FileExtension = ext
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Export.Precision = math.Clamp(c.Export.Precision, loaders.MinPrecision, loaders.MaxPrecision)
}

// setDefaults registers every field so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("exchange.primary_path", d.Exchange.PrimaryPath)
	v.SetDefault("exchange.fallback_folder", d.Exchange.FallbackFolder)
	v.SetDefault("exchange.file_extension", d.Exchange.FileExtension)
	v.SetDefault("exchange.watch_debounce", d.Exchange.WatchDebounce)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.scale", d.Export.Scale)
	v.SetDefault("export.precision", d.Export.Precision)
	v.SetDefault("import.orientation", d.Import.Orientation)
	v.SetDefault("import.promoted_name", d.Import.PromotedName)
	v.SetDefault("scene.database", d.Scene.Database)
	v.SetDefault("log.level", d.Log.Level)
}
