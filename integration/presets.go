package integration

import (
	"fmt"
	"strings"

	"github.com/rony4d/go-textwindow/pipeline"
	"github.com/rony4d/go-textwindow/utils/utf"
)

// Package integration provides decoding presets and assembly helpers for
// building the textwindow pipeline. A preset bundles the settings that belong
// together for one input encoding (format, default byte order, byte-order mark
// handling, read size) under a short name, so operators can write
// --preset=utf16le instead of four separate flags.
//
// Usage:
//   cfg := integration.DefaultPreset()      // UTF-8, optional BOM
//   cfg := integration.UTF16LEPreset()      // Windows "Unicode" text
//   cfg, _ := integration.GetPresetByName("utf32")
//
// Each preset returns a PresetConfig that the launcher merges into its main
// config before flag overrides are applied.

// PresetConfig captures the parameters that vary across input encodings.
type PresetConfig struct {
	Name         string `yaml:"preset"`        // preset identifier (e.g., "utf8", "utf16le")
	Encoding     string `yaml:"encoding"`      // utf8, utf16 or utf32
	LittleEndian bool   `yaml:"little_endian"` // byte order assumed when the input carries no byte-order mark
	DetectBOM    bool   `yaml:"detect_bom"`    // consume a leading byte-order mark and let it decide the byte order
	ChunkSize    int    `yaml:"chunk_size"`    // largest chunk read from the input at once
	Replace      bool   `yaml:"replace"`       // substitute U+FFFD for malformed input instead of failing
}

// DefaultPreset decodes UTF-8 and silently drops a leading byte-order mark.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:         "utf8",
		Encoding:     "utf8",
		LittleEndian: false, // irrelevant for single-byte code units
		DetectBOM:    true,  // editors on Windows like to prepend EF BB BF
		ChunkSize:    4096,  // one page per read
		Replace:      false, // report corrupt input instead of masking it
	}
}

// UTF16LEPreset decodes little-endian UTF-16 without a byte-order mark, the
// layout Windows calls "Unicode".
//
// Trade-offs:
//   - A leading FF FE is taken as U+FEFF text, not consumed
//   - Input produced on big-endian machines decodes to garbage
func UTF16LEPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "utf16le"
	cfg.Encoding = "utf16"
	cfg.LittleEndian = true
	cfg.DetectBOM = false
	return cfg
}

// UTF16BEPreset decodes big-endian UTF-16 without a byte-order mark.
func UTF16BEPreset() PresetConfig {
	cfg := UTF16LEPreset()
	cfg.Name = "utf16be"
	cfg.LittleEndian = false
	return cfg
}

// UTF16Preset decodes UTF-16 whose byte order is announced by a leading
// byte-order mark, falling back to big-endian as RFC 2781 requires.
func UTF16Preset() PresetConfig {
	cfg := UTF16BEPreset()
	cfg.Name = "utf16"
	cfg.DetectBOM = true
	return cfg
}

// UTF32LEPreset decodes little-endian UTF-32 without a byte-order mark.
func UTF32LEPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "utf32le"
	cfg.Encoding = "utf32"
	cfg.LittleEndian = true
	cfg.DetectBOM = false
	cfg.ChunkSize = 16384 // four bytes per code point
	return cfg
}

// UTF32BEPreset decodes big-endian UTF-32 without a byte-order mark.
func UTF32BEPreset() PresetConfig {
	cfg := UTF32LEPreset()
	cfg.Name = "utf32be"
	cfg.LittleEndian = false
	return cfg
}

// UTF32Preset decodes UTF-32 with byte-order mark detection, big-endian by default.
func UTF32Preset() PresetConfig {
	cfg := UTF32BEPreset()
	cfg.Name = "utf32"
	cfg.DetectBOM = true
	return cfg
}

// GetPresetByName looks up a preset by its identifier. Dashes and case are
// ignored, so "UTF-16LE" selects the utf16le preset.
//
// Example:
//
//	preset, err := integration.GetPresetByName("utf16le")
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetPresetByName(name string) (PresetConfig, error) {
	switch strings.ReplaceAll(strings.ToLower(name), "-", "") {
	case "utf8", "default":
		return DefaultPreset(), nil
	case "utf16le":
		return UTF16LEPreset(), nil
	case "utf16be":
		return UTF16BEPreset(), nil
	case "utf16":
		return UTF16Preset(), nil
	case "utf32le":
		return UTF32LEPreset(), nil
	case "utf32be":
		return UTF32BEPreset(), nil
	case "utf32":
		return UTF32Preset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: utf8, utf16, utf16le, utf16be, utf32, utf32le, utf32be)", name)
	}
}

// ApplyPreset merges a preset into an existing config. Non-empty fields of the
// preset override the target.
//
// Example:
//
//	cfg := integration.DefaultPreset()
//	integration.ApplyPreset(&cfg, integration.UTF16Preset())
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.Encoding != "" {
		target.Encoding = preset.Encoding
	}
	if preset.ChunkSize > 0 {
		target.ChunkSize = preset.ChunkSize
	}
	// boolean fields are always applied (no zero-value check needed)
	target.LittleEndian = preset.LittleEndian
	target.DetectBOM = preset.DetectBOM
	target.Replace = preset.Replace
	if preset.Name != "" {
		target.Name = preset.Name
	}
}

// DecoderConfig translates the preset into a pipeline configuration.
func (p PresetConfig) DecoderConfig() (pipeline.Config, error) {
	f, err := utf.FormatByName(p.Encoding)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		Format: f,
		Options: utf.Options{
			LittleEndian: p.LittleEndian,
			DetectBOM:    p.DetectBOM,
		},
		Replace: p.Replace,
	}, nil
}
