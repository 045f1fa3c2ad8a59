// Package config handles zraster configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/zraster/pkg/math3d"
	"github.com/taigrr/zraster/pkg/render"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config holds every render setting.
type Config struct {
	Render  RenderConfig   `yaml:"render"`
	Camera  CameraConfig   `yaml:"camera"`
	Objects []ObjectConfig `yaml:"objects"`
	Output  OutputConfig   `yaml:"output"`
	Logging LoggingConfig  `yaml:"logging"`
}

// RenderConfig holds framebuffer and scheduler settings.
type RenderConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Workers        int     `yaml:"workers"`
	MinChunk       int     `yaml:"min_chunk"`
	Background     string  `yaml:"background"` // Hex color, e.g. "#ffffff"
	Flip           bool    `yaml:"flip"`       // Flip rows before writing so the image is top-down
	SpecularWeight float64 `yaml:"specular_weight"`
}

// Vec3 is a 3-component vector written as a YAML flow sequence.
type Vec3 [3]float64

// Vec converts v to a math3d vector.
func (v Vec3) Vec() math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}

// CameraConfig holds the camera placement and light direction.
type CameraConfig struct {
	Eye   Vec3 `yaml:"eye,flow"`
	Up    Vec3 `yaml:"up,flow"`
	Light Vec3 `yaml:"light,flow"`
}

// ObjectConfig describes one model in the scene. Texture paths are
// optional; Rotate holds degrees around x, y and z, applied in that order.
type ObjectConfig struct {
	Model    string `yaml:"model"`
	Diffuse  string `yaml:"diffuse,omitempty"`
	Normal   string `yaml:"normal,omitempty"`
	Specular string `yaml:"specular,omitempty"`
	Position Vec3   `yaml:"position,flow"`
	Rotate   Vec3   `yaml:"rotate,flow"`
	Fit      bool   `yaml:"fit"` // Center and scale the mesh to a unit box
}

// OutputConfig holds the image output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:          800,
			Height:         800,
			Workers:        4,
			MinChunk:       200,
			Background:     "#ffffff",
			Flip:           true,
			SpecularWeight: render.DefaultSpecularWeight,
		},
		Camera: CameraConfig{
			Eye:   Vec3{-1, -1, 3},
			Up:    Vec3{0, 1, 0},
			Light: Vec3{0, 0, 1},
		},
		Output: OutputConfig{
			Path: "output.png",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be rendered.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("render size %dx%d: %w", c.Render.Width, c.Render.Height, ErrInvalid)
	case c.Render.Workers <= 0:
		return fmt.Errorf("render workers %d: %w", c.Render.Workers, ErrInvalid)
	case c.Render.MinChunk <= 0:
		return fmt.Errorf("render min_chunk %d: %w", c.Render.MinChunk, ErrInvalid)
	case c.Render.SpecularWeight < 0:
		return fmt.Errorf("render specular_weight %g: %w", c.Render.SpecularWeight, ErrInvalid)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if c.Camera.Light.Vec().Len() == 0 {
		return fmt.Errorf("camera light is the zero vector: %w", ErrInvalid)
	}
	// Each object is looked at from the eye, so up must not lie along
	// eye - position. With no objects the target is the origin.
	up := c.Camera.Up.Vec()
	if len(c.Objects) == 0 && up.Cross(c.Camera.Eye.Vec()).Len() == 0 {
		return fmt.Errorf("camera up %v is parallel to eye %v: %w", c.Camera.Up, c.Camera.Eye, ErrInvalid)
	}
	for i, obj := range c.Objects {
		if obj.Model == "" {
			return fmt.Errorf("object %d has no model: %w", i, ErrInvalid)
		}
		view := c.Camera.Eye.Vec().Sub(obj.Position.Vec())
		if up.Cross(view).Len() == 0 {
			return fmt.Errorf("object %d: camera up %v is parallel to the view direction %v: %w", i, c.Camera.Up, view, ErrInvalid)
		}
	}
	if !render.Supported(render.FormatFromPath(c.Output.Path)) {
		return fmt.Errorf("output %q: %w", c.Output.Path, render.ErrUnsupportedFormat)
	}
	return nil
}

// BackgroundColor parses the background hex color.
func (c *Config) BackgroundColor() (render.Color, error) {
	col, err := colorful.Hex(c.Render.Background)
	if err != nil {
		return render.Color{}, fmt.Errorf("render background %q: %w", c.Render.Background, ErrInvalid)
	}
	r, g, b := col.RGB255()
	return render.RGB(r, g, b), nil
}
