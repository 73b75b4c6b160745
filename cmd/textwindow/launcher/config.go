// This file maps defaults, the optional YAML config file and CLI flags onto
// the Config struct.

package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/rony4d/go-textwindow/integration"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Input   InputConfig              `yaml:"input"`
	Decode  integration.PresetConfig `yaml:"decode"`
	Output  OutputConfig             `yaml:"output"`
	Logging LoggingConfig            `yaml:"log"`
	Metrics MetricsConfig            `yaml:"metrics"`
}

type InputConfig struct {
	Path   string `yaml:"path"`
	Follow bool   `yaml:"follow"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"`
	Format    string `yaml:"format"`
	Color     bool   `yaml:"color"`
	SentryDSN string `yaml:"sentry"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Port    int    `yaml:"port"`
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Input: InputConfig{
			Path:   d.Input.Path,
			Follow: d.Input.Follow,
		},
		Decode: d.Decode,
		Output: OutputConfig{
			Format: d.Output.Format,
		},
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
			SentryDSN: d.Logging.SentryDSN,
		},
		Metrics: MetricsConfig{
			Enabled: d.Metrics.Enable,
			Addr:    d.Metrics.HTTPAddr,
			Port:    d.Metrics.HTTPPort,
		},
	}
}

// MakeAllConfigs merges defaults, config-file values, and CLI overrides into
// a single config struct. A preset named on the command line is applied
// before the individual decoding flags, so --preset=utf16 --endian=le works.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

// loadConfigFile decodes the file twice: the first pass only looks for
// decode.preset, which is expanded into cfg before the second pass lets the
// file's explicit fields win over the preset.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var head struct {
		Decode struct {
			Preset string `yaml:"preset"`
		} `yaml:"decode"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Decode.Preset != "" {
		if err := applyPreset(&cfg.Decode, head.Decode.Preset); err != nil {
			return err
		}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyPreset(target *integration.PresetConfig, name string) error {
	preset, err := integration.GetPresetByName(name)
	if err != nil {
		return err
	}
	integration.ApplyPreset(target, preset)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.IsSet("input") {
		cfg.Input.Path = ctx.String("input")
	}
	if ctx.IsSet("follow") {
		cfg.Input.Follow = ctx.Bool("follow")
	}

	if ctx.IsSet("preset") {
		if err := applyPreset(&cfg.Decode, ctx.String("preset")); err != nil {
			return err
		}
	}
	if ctx.IsSet("encoding") {
		cfg.Decode.Encoding = ctx.String("encoding")
	}
	if ctx.IsSet("endian") {
		switch strings.ToLower(ctx.String("endian")) {
		case "le", "little":
			cfg.Decode.LittleEndian = true
		case "be", "big":
			cfg.Decode.LittleEndian = false
		default:
			return fmt.Errorf("invalid --endian %q (valid: le, be)", ctx.String("endian"))
		}
	}
	if ctx.IsSet("bom") {
		cfg.Decode.DetectBOM = ctx.BoolT("bom")
	}
	if ctx.IsSet("chunk") {
		cfg.Decode.ChunkSize = ctx.Int("chunk")
	}
	if ctx.IsSet("replace") {
		cfg.Decode.Replace = ctx.Bool("replace")
	}

	if ctx.IsSet("format") {
		cfg.Output.Format = ctx.String("format")
	}

	if ctx.IsSet("log.format") {
		cfg.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("log.sentry") {
		cfg.Logging.SentryDSN = ctx.String("log.sentry")
	}

	if ctx.Bool("metrics") {
		cfg.Metrics.Enabled = true
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Metrics.Addr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Metrics.Port = ctx.Int("metrics.port")
	}
	return nil
}

func (c Config) validate() error {
	if c.Decode.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Decode.ChunkSize)
	}
	if c.Input.Follow && (c.Input.Path == "" || c.Input.Path == "-") {
		return fmt.Errorf("--follow needs a file, not standard input")
	}
	if _, err := c.Decode.DecoderConfig(); err != nil {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
