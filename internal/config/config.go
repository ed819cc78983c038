package config

import (
	"bytes"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Values is one consistent view of the render settings
type Values struct {
	Shaderpack    string `yaml:"shaderpack"`
	ShaderpackDir string `yaml:"shaderpackDir"`

	ViewWidth   int     `yaml:"viewWidth"`
	ViewHeight  int     `yaml:"viewHeight"`
	ScaleFactor float32 `yaml:"scaleFactor"`

	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queueSize"`

	RenderDistance int `yaml:"renderDistance"` // in chunks
	MaxFPS         int `yaml:"maxFPS"`         // 0 is uncapped

	LogLevel string `yaml:"logLevel"`
}

// Defaults returns the settings used for any value the file leaves out
func Defaults() Values {
	return Values{
		Shaderpack:     "default",
		ShaderpackDir:  "shaderpacks",
		ViewWidth:      900,
		ViewHeight:     600,
		ScaleFactor:    2,
		Workers:        defaultWorkers(),
		QueueSize:      200,
		RenderDistance: 25,
		LogLevel:       "info",
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// normalize fills zero values from Defaults and clamps ranges
func (v Values) normalize() Values {
	d := Defaults()
	if v.Shaderpack == "" {
		v.Shaderpack = d.Shaderpack
	}
	if v.ShaderpackDir == "" {
		v.ShaderpackDir = d.ShaderpackDir
	}
	if v.ViewWidth <= 0 {
		v.ViewWidth = d.ViewWidth
	}
	if v.ViewHeight <= 0 {
		v.ViewHeight = d.ViewHeight
	}
	if v.ScaleFactor <= 0 {
		v.ScaleFactor = d.ScaleFactor
	}
	if v.Workers <= 0 {
		v.Workers = d.Workers
	}
	if v.QueueSize <= 0 {
		v.QueueSize = d.QueueSize
	}
	if v.RenderDistance == 0 {
		v.RenderDistance = d.RenderDistance
	}
	// Clamp to reasonable values
	if v.RenderDistance < 5 {
		v.RenderDistance = 5
	}
	if v.RenderDistance > 50 {
		v.RenderDistance = 50
	}
	if v.MaxFPS < 0 {
		v.MaxFPS = 0
	}
	if v.LogLevel == "" {
		v.LogLevel = d.LogLevel
	}
	return v
}

// Parse decodes YAML settings, unknown keys are rejected
func Parse(data []byte) (Values, error) {
	var v Values
	if len(bytes.TrimSpace(data)) == 0 {
		return v.normalize(), nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return Values{}, errors.Wrap(err, "decode settings")
	}
	return v.normalize(), nil
}

// LevelFromString maps the logLevel setting to a slog level, defaulting to info
func LevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Settings holds the live render settings and notifies listeners on change
type Settings struct {
	mu        sync.RWMutex
	values    Values
	listeners []func(Values)
}

// New returns settings initialised from v
func New(v Values) *Settings {
	return &Settings{values: v.normalize()}
}

// Load reads settings from a YAML file. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	v, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return New(v), nil
}

func readFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Defaults(), nil
	}
	if err != nil {
		return Values{}, errors.Wrapf(err, "read settings %s", path)
	}
	v, err := Parse(data)
	if err != nil {
		return Values{}, errors.Wrapf(err, "settings %s", path)
	}
	return v, nil
}

// Get returns a copy of the current values
func (s *Settings) Get() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// RenderDistance returns the current render distance in chunks
func (s *Settings) RenderDistance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.RenderDistance
}

// SetRenderDistance sets the render distance in chunks, clamped to [5, 50]
func (s *Settings) SetRenderDistance(distance int) {
	v := s.Get()
	v.RenderDistance = distance
	if distance == 0 {
		v.RenderDistance = 5
	}
	s.Update(v)
}

// OnChange registers fn to be called with the new values after every update.
// Listeners run on the goroutine that performed the update.
func (s *Settings) OnChange(fn func(Values)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Update replaces the values and notifies listeners
func (s *Settings) Update(v Values) {
	v = v.normalize()
	s.mu.Lock()
	s.values = v
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
}

// Reload re-reads path and applies it. On error the current values are kept.
func (s *Settings) Reload(path string) error {
	v, err := readFile(path)
	if err != nil {
		return err
	}
	s.Update(v)
	return nil
}
