package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/voxelcore/internal/core/observability/log"
	"github.com/zeusync/voxelcore/internal/core/systems"
)

const sceneYAML = `
log:
  level: debug
visibility:
  mode: full
frames: 3
scene:
  name: yard
  entities:
    - name: lamp
      parent: post
      position: [0, 2, 0]
      mesh: lamp.vox
    - name: post
      position: [1, 0, 0]
      rotation: [0, 90, 0]
      scale: [2, 2, 2]
    - name: ghost
      visible: false
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(sceneYAML))
	require.NoError(t, err)

	assert.Equal(t, log.LevelDebug, c.LogLevel())
	assert.Equal(t, systems.VisibilityFull, c.VisibilityMode())
	assert.Equal(t, 3, c.Frames)
	assert.Equal(t, DefaultProfilerWindow, c.ProfilerWindow)
	assert.Equal(t, "yard", c.Scene.Name)
	require.Len(t, c.Scene.Entities, 3)

	lamp := c.Scene.Entities[0]
	assert.Equal(t, [3]float32{0, 2, 0}, lamp.Position)
	assert.Equal(t, [3]float32{1, 1, 1}, lamp.ScaleOrDefault())
	assert.True(t, lamp.IsVisible())
	assert.Equal(t, "lamp.vox", lamp.Mesh)

	post := c.Scene.Entities[1]
	assert.Equal(t, [3]float32{2, 2, 2}, post.ScaleOrDefault())
	assert.Equal(t, [3]float32{0, 90, 0}, post.Rotation)
	assert.False(t, c.Scene.Entities[2].IsVisible())
}

func TestLoadEmptyIsDefault(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestOrderedPutsParentsFirst(t *testing.T) {
	c, err := Load(strings.NewReader(sceneYAML))
	require.NoError(t, err)

	var names []string
	for _, e := range c.Scene.Ordered() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"post", "ghost", "lamp"}, names)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, ErrInvalidConfig},
		{"bad mode", func(c *Config) { c.Visibility.Mode = "sometimes" }, systems.ErrUnknownMode},
		{"negative frames", func(c *Config) { c.Frames = -1 }, ErrInvalidConfig},
		{"zero window", func(c *Config) { c.ProfilerWindow = 0 }, ErrInvalidConfig},
		{"bad profile", func(c *Config) { c.Profile = "heap" }, ErrInvalidConfig},
		{"unnamed entity", func(c *Config) {
			c.Scene.Entities = []EntityConfig{{}}
		}, ErrInvalidConfig},
		{"duplicate", func(c *Config) {
			c.Scene.Entities = []EntityConfig{{Name: "a"}, {Name: "a"}}
		}, ErrDuplicateEntity},
		{"unknown parent", func(c *Config) {
			c.Scene.Entities = []EntityConfig{{Name: "a", Parent: "nobody"}}
		}, ErrUnknownParent},
		{"self parent", func(c *Config) {
			c.Scene.Entities = []EntityConfig{{Name: "a", Parent: "a"}}
		}, ErrParentCycle},
		{"loop", func(c *Config) {
			c.Scene.Entities = []EntityConfig{{Name: "a", Parent: "c"}, {Name: "b", Parent: "a"}, {Name: "c", Parent: "b"}}
		}, ErrParentCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "garden.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("frames: 2\n"), 0o600))
	c, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Frames)
	assert.Equal(t, "garden", c.Scene.Name)

	jsonPath := filepath.Join(dir, "shed.json")
	body := `{"frames": 4, "scene": {"entities": [{"name": "box", "position": [1, 2, 3]}]}}`
	require.NoError(t, os.WriteFile(jsonPath, []byte(body), 0o600))
	c, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Frames)
	assert.Equal(t, [3]float32{1, 2, 3}, c.Scene.Entities[0].Position)

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"frames": "many"}`), 0o600))
	_, err = LoadFile(jsonPath)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
