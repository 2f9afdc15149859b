package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/speccover/internal/application"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".speccover.yaml"

// SkipEnv forces coverage off when set to a true value.
const SkipEnv = "SPECCOVER_SKIP"

type Loader struct{}

// fileConfig mirrors the YAML layout. The older key names (whitelist,
// blacklist, format, output, ...) are accepted as aliases; the newer
// name wins when both are present.
type fileConfig struct {
	IncludeDirs        stringList        `yaml:"include_dirs"`
	ExcludeDirs        stringList        `yaml:"exclude_dirs"`
	IncludeFiles       stringList        `yaml:"include_files"`
	ExcludeFiles       stringList        `yaml:"exclude_files"`
	Formats            stringList        `yaml:"formats"`
	OutputDestinations map[string]string `yaml:"output_destinations"`
	Skip               *bool             `yaml:"skip"`
	Text               *fileText         `yaml:"text"`

	Whitelist      stringList        `yaml:"whitelist"`
	Blacklist      stringList        `yaml:"blacklist"`
	WhitelistFiles stringList        `yaml:"whitelist_files"`
	BlacklistFiles stringList        `yaml:"blacklist_files"`
	Format         stringList        `yaml:"format"`
	Output         map[string]string `yaml:"output"`
}

type fileText struct {
	ShowUncoveredFiles *bool    `yaml:"show_uncovered_files"`
	ShowOnlySummary    *bool    `yaml:"show_only_summary"`
	LowerUpperBound    *float64 `yaml:"lower_upper_bound"`
	HighLowerBound     *float64 `yaml:"high_lower_bound"`
}

// stringList accepts either a single scalar or a sequence. It stays nil
// when the key is absent or null.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		*l = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		if items == nil {
			items = []string{}
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

func (l Loader) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load parses the file at path. Keys missing from the file leave the
// matching Options field nil.
func (l Loader) Load(path string) (application.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return application.Config{}, fmt.Errorf("%w: %s", application.ErrConfigNotFound, path)
		}
		return application.Config{}, err
	}
	return Parse(raw)
}

// Parse decodes YAML config data.
func Parse(raw []byte) (application.Config, error) {
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return application.Config{}, fmt.Errorf("parse config: %w", err)
	}

	opts := application.Options{
		IncludeDirs:  first(cfg.IncludeDirs, cfg.Whitelist),
		ExcludeDirs:  first(cfg.ExcludeDirs, cfg.Blacklist),
		IncludeFiles: first(cfg.IncludeFiles, cfg.WhitelistFiles),
		ExcludeFiles: first(cfg.ExcludeFiles, cfg.BlacklistFiles),
		Formats:      first(cfg.Formats, cfg.Format),
		Destinations: cfg.OutputDestinations,
		Skip:         cfg.Skip,
	}
	if opts.Destinations == nil {
		opts.Destinations = cfg.Output
	}

	text := application.DefaultTextOptions()
	if t := cfg.Text; t != nil {
		if t.ShowUncoveredFiles != nil {
			text.ShowUncoveredFiles = *t.ShowUncoveredFiles
		}
		if t.ShowOnlySummary != nil {
			text.ShowOnlySummary = *t.ShowOnlySummary
		}
		if t.LowerUpperBound != nil {
			text.LowUpperBound = *t.LowerUpperBound
		}
		if t.HighLowerBound != nil {
			text.HighLowerBound = *t.HighLowerBound
		}
	}
	if text.LowUpperBound > text.HighLowerBound {
		return application.Config{}, fmt.Errorf("parse config: lower_upper_bound %.1f exceeds high_lower_bound %.1f",
			text.LowUpperBound, text.HighLowerBound)
	}

	return application.Config{Listener: opts, Text: text}, nil
}

func first(primary, alias stringList) []string {
	if primary != nil {
		return primary
	}
	if alias != nil {
		return alias
	}
	return nil
}

// SkipFromEnv reads SkipEnv. It returns nil when the variable is unset
// so that the file setting is kept.
func SkipFromEnv(getenv func(string) string) *bool {
	switch getenv(SkipEnv) {
	case "":
		return nil
	case "1", "true", "TRUE", "yes":
		return application.Bool(true)
	default:
		return application.Bool(false)
	}
}

type writeConfig struct {
	IncludeDirs        []string          `yaml:"include_dirs"`
	ExcludeDirs        []string          `yaml:"exclude_dirs"`
	IncludeFiles       []string          `yaml:"include_files"`
	ExcludeFiles       []string          `yaml:"exclude_files"`
	Formats            []string          `yaml:"formats"`
	OutputDestinations map[string]string `yaml:"output_destinations"`
	Skip               bool              `yaml:"skip"`
	Text               writeText         `yaml:"text"`
}

type writeText struct {
	ShowUncoveredFiles bool    `yaml:"show_uncovered_files"`
	ShowOnlySummary    bool    `yaml:"show_only_summary"`
	LowerUpperBound    float64 `yaml:"lower_upper_bound"`
	HighLowerBound     float64 `yaml:"high_lower_bound"`
}

// Write serialises cfg with the canonical key names. Unset options are
// written with their default values.
func Write(w io.Writer, cfg application.Config) error {
	opts := application.DefaultOptions().Merge(cfg.Listener)
	out := writeConfig{
		IncludeDirs:        opts.IncludeDirs,
		ExcludeDirs:        opts.ExcludeDirs,
		IncludeFiles:       opts.IncludeFiles,
		ExcludeFiles:       opts.ExcludeFiles,
		Formats:            opts.Formats,
		OutputDestinations: opts.Destinations,
		Skip:               opts.SkipCoverage(),
		Text: writeText{
			ShowUncoveredFiles: cfg.Text.ShowUncoveredFiles,
			ShowOnlySummary:    cfg.Text.ShowOnlySummary,
			LowerUpperBound:    cfg.Text.LowUpperBound,
			HighLowerBound:     cfg.Text.HighLowerBound,
		},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
