// Package config handles converter configuration loading and management.
package config

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/bim2gltf/pkg/ifc"
	"github.com/Faultbox/bim2gltf/pkg/math"
)

// Output formats.
const (
	FormatGLTF = "gltf"
	FormatGLB  = "glb"
)

// Config holds all converter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	MergePrimitives    bool     `yaml:"merge_primitives"`
	Prevent8BitIndices bool     `yaml:"prevent_8bit_indices"`
	ExcludeTypes       []string `yaml:"exclude_types"`
	Format             string   `yaml:"format"` // gltf or glb
	Extras             bool     `yaml:"extras"`

	// Elements limits the export to these element ids.
	Elements []int `yaml:"elements,omitempty"`

	// Transform is applied to every element placement, 16 column-major values.
	Transform []float64 `yaml:"transform,omitempty"`

	// Colours overrides type default colours, RGB or RGBA per type name.
	Colours map[string][]float32 `yaml:"colours,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			MergePrimitives:    false,
			Prevent8BitIndices: true,
			ExcludeTypes:       []string{"IfcSpace", "IfcFeatureElement"},
			Format:             FormatGLTF,
			Extras:             false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error

	switch strings.ToLower(c.Export.Format) {
	case FormatGLTF, FormatGLB:
	default:
		err = multierr.Append(err, fmt.Errorf("export.format: unknown format %q", c.Export.Format))
	}

	if n := len(c.Export.Transform); n != 0 && n != 16 {
		err = multierr.Append(err, fmt.Errorf("export.transform: need 16 values, got %d", n))
	}

	names := make([]string, 0, len(c.Export.Colours))
	for name := range c.Export.Colours {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if n := len(c.Export.Colours[name]); n != 3 && n != 4 {
			err = multierr.Append(err, fmt.Errorf("export.colours.%s: need 3 or 4 components, got %d", name, n))
		}
	}

	for _, id := range c.Export.Elements {
		if id <= 0 {
			err = multierr.Append(err, fmt.Errorf("export.elements: invalid element id %d", id))
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	return err
}

// Extension returns the output file extension for the configured format.
func (e ExportConfig) Extension() string {
	if strings.EqualFold(e.Format, FormatGLB) {
		return "." + FormatGLB
	}
	return "." + FormatGLTF
}

// TransformMatrix returns the overall output transform, or nil when none is
// configured.
func (e ExportConfig) TransformMatrix() *math.Mat4 {
	m, ok := math.FromSlice(e.Transform)
	if !ok {
		return nil
	}
	return &m
}

// ColourMap returns the default type colours with the configured overrides.
func (e ExportConfig) ColourMap() *ifc.ColourMap {
	cm := ifc.DefaultColourMap()
	if len(e.Colours) == 0 {
		return cm
	}

	overrides := make([]ifc.Colour, 0, len(e.Colours))
	for name, rgba := range e.Colours {
		c := ifc.Colour{Name: name, A: 1}
		switch len(rgba) {
		case 4:
			c.A = rgba[3]
			fallthrough
		case 3:
			c.R, c.G, c.B = rgba[0], rgba[1], rgba[2]
		default:
			continue
		}
		overrides = append(overrides, c)
	}
	return cm.With(overrides...)
}
