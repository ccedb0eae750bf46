package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags holds the command-line overrides shared by the converter commands.
type Flags struct {
	config    *string
	debug     *bool
	logFile   *string
	merge     *bool
	hierarchy *bool
	format    *string
	exclude   *string
	allow8Bit *bool
	extras    *bool
	elements  *string
}

// RegisterFlags defines the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log", "", "Write logs to this file"),
		merge:     fs.Bool("merge", false, "One mesh per element with all shapes as primitives"),
		hierarchy: fs.Bool("hierarchy", false, "One mesh and sub-node per shape"),
		format:    fs.String("format", "", "Output format: gltf or glb"),
		exclude:   fs.String("exclude", "", "Comma separated types to exclude (replaces the configured list)"),
		allow8Bit: fs.Bool("allow-8bit", false, "Allow UNSIGNED_BYTE indices"),
		extras:    fs.Bool("extras", false, "Attach GlobalId extras to element nodes"),
		elements:  fs.String("elements", "", "Comma separated element ids to export"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply copies the flags that were set onto cfg.
func (f *Flags) apply(cfg *Config) error {
	if f == nil {
		return nil
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.merge {
		cfg.Export.MergePrimitives = true
	}
	if *f.hierarchy {
		cfg.Export.MergePrimitives = false
	}
	if *f.format != "" {
		cfg.Export.Format = strings.ToLower(*f.format)
	}
	if *f.exclude != "" {
		cfg.Export.ExcludeTypes = splitList(*f.exclude)
	}
	if *f.allow8Bit {
		cfg.Export.Prevent8BitIndices = false
	}
	if *f.extras {
		cfg.Export.Extras = true
	}
	if *f.elements != "" {
		ids, err := parseIDs(*f.elements)
		if err != nil {
			return fmt.Errorf("-elements: %w", err)
		}
		cfg.Export.Elements = ids
	}
	return nil
}

// parseIDs parses a comma separated list of element ids.
func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, item := range splitList(s) {
		id, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid element id %q", item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// splitList splits a comma separated list, dropping empty items. "none"
// yields an empty, non-nil list.
func splitList(s string) []string {
	out := []string{}
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return out
	}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
