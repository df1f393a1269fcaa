// Package config describes a voxelcore run: logging, system modes, frame
// budget and the scene to build. Files are YAML or JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/systems"
)

const (
	DefaultFrames         = 1
	DefaultProfilerWindow = 120
)

// Profile kinds accepted by the driver.
var profiles = []string{"", "cpu", "mem", "block", "mutex", "trace", "goroutine"}

type Config struct {
	Log            LogConfig        `json:"log" yaml:"log"`
	Visibility     VisibilityConfig `json:"visibility" yaml:"visibility"`
	Frames         int              `json:"frames" yaml:"frames"`
	ProfilerWindow int              `json:"profiler_window" yaml:"profiler_window"`
	Profile        string           `json:"profile,omitempty" yaml:"profile,omitempty"`
	Scene          SceneConfig      `json:"scene" yaml:"scene"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type VisibilityConfig struct {
	Mode string `json:"mode" yaml:"mode"`
}

type SceneConfig struct {
	Name     string         `json:"name" yaml:"name"`
	Entities []EntityConfig `json:"entities" yaml:"entities"`
}

// EntityConfig is one scene node. Rotation is Euler angles in degrees. A
// missing scale means 1 on every axis and a missing visible flag means true.
type EntityConfig struct {
	Name     string      `json:"name" yaml:"name"`
	Parent   string      `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position [3]float32  `json:"position" yaml:"position"`
	Rotation [3]float32  `json:"rotation" yaml:"rotation"`
	Scale    *[3]float32 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Visible  *bool       `json:"visible,omitempty" yaml:"visible,omitempty"`
	Mesh     string      `json:"mesh,omitempty" yaml:"mesh,omitempty"`
}

// ScaleOrDefault returns the configured scale or (1, 1, 1).
func (e EntityConfig) ScaleOrDefault() [3]float32 {
	if e.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *e.Scale
}

// IsVisible returns the configured flag or true.
func (e EntityConfig) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

// Default returns an empty scene run for one frame.
func Default() *Config {
	return &Config{
		Log:            LogConfig{Level: "info"},
		Visibility:     VisibilityConfig{Mode: systems.VisibilityIncremental.String()},
		Frames:         DefaultFrames,
		ProfilerWindow: DefaultProfilerWindow,
	}
}

// Load decodes YAML from r over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return c, c.Validate()
}

// LoadJSON decodes JSON from r over the defaults and validates the result.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return c, c.Validate()
}

// LoadFile reads path, picking the decoder from its extension. Files not
// ending in .json are read as YAML.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var c *Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		c, err = LoadJSON(f)
	} else {
		c, err = Load(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Scene.Name == "" {
		c.Scene.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return lvl
}

// VisibilityMode returns the parsed visibility mode.
func (c *Config) VisibilityMode() systems.VisibilityMode {
	m, err := systems.ParseVisibilityMode(c.Visibility.Mode)
	if err != nil {
		return systems.VisibilityIncremental
	}
	return m
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %w", err)
	}
	if _, err := systems.ParseVisibilityMode(c.Visibility.Mode); err != nil {
		invalid("visibility.mode: %w", err)
	}
	if c.Frames < 0 {
		invalid("frames must not be negative, got %d", c.Frames)
	}
	if c.ProfilerWindow <= 0 {
		invalid("profiler_window must be positive, got %d", c.ProfilerWindow)
	}
	if !validProfile(c.Profile) {
		invalid("profile %q is not one of %s", c.Profile, strings.Join(profiles[1:], ", "))
	}
	errs = append(errs, c.Scene.Validate())
	return errors.Join(errs...)
}

func validProfile(p string) bool {
	for _, k := range profiles {
		if p == k {
			return true
		}
	}
	return false
}

// Validate checks names and parent links.
func (s *SceneConfig) Validate() error {
	var errs []error
	parents := make(map[string]string, len(s.Entities))
	for i, e := range s.Entities {
		switch {
		case e.Name == "":
			errs = append(errs, fmt.Errorf("%w: scene.entities[%d] has no name", ErrInvalidConfig, i))
			continue
		case e.Parent == e.Name:
			errs = append(errs, fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrParentCycle, e.Name))
		}
		if _, dup := parents[e.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrDuplicateEntity, e.Name))
			continue
		}
		parents[e.Name] = e.Parent
	}

	for _, e := range s.Entities {
		if e.Parent == "" || e.Parent == e.Name {
			continue
		}
		if _, ok := parents[e.Parent]; !ok {
			errs = append(errs, fmt.Errorf("%w: %w: %s wants %s", ErrInvalidConfig, ErrUnknownParent, e.Name, e.Parent))
		}
	}

	// A walk longer than the entity count means a loop.
	for _, e := range s.Entities {
		n, steps := e.Parent, 0
		for n != "" && n != e.Name && steps <= len(parents) {
			n = parents[n]
			steps++
		}
		if n == e.Name && e.Parent != e.Name {
			errs = append(errs, fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrParentCycle, e.Name))
		}
	}
	return errors.Join(errs...)
}

// Ordered returns the entities with every parent ahead of its children.
// Siblings keep their file order. The config must be valid.
func (s *SceneConfig) Ordered() []EntityConfig {
	placed := make(map[string]bool, len(s.Entities))
	out := make([]EntityConfig, 0, len(s.Entities))
	for len(out) < len(s.Entities) {
		progress := false
		for _, e := range s.Entities {
			if placed[e.Name] || (e.Parent != "" && !placed[e.Parent]) {
				continue
			}
			placed[e.Name] = true
			out = append(out, e)
			progress = true
		}
		if !progress {
			break
		}
	}
	return out
}
