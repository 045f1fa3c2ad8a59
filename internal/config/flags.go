package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Zero values leave the file or default
// setting alone.
type Flags struct {
	ConfigPath string
	Width      int
	Height     int
	Workers    int
	MinChunk   int
	Background string
	Output     string
	NoFlip     bool
	Debug      bool
	LogFile    string

	// A model given on the command line replaces the configured objects.
	Model    string
	Diffuse  string
	Normal   string
	Specular string
	NoFit    bool
}

// Register binds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to config file (default: ./"+FileName+")")
	fs.IntVar(&f.Width, "width", 0, "image width in pixels")
	fs.IntVar(&f.Height, "height", 0, "image height in pixels")
	fs.IntVarP(&f.Workers, "workers", "j", 0, "number of render threads")
	fs.IntVar(&f.MinChunk, "min-chunk", 0, "minimum triangles per job")
	fs.StringVar(&f.Background, "bg", "", "background color as hex, e.g. #1e1e28")
	fs.StringVarP(&f.Output, "output", "o", "", "output image (.png, .jpg, .tga, .webp, .bmp, .tif)")
	fs.BoolVar(&f.NoFlip, "no-flip", false, "write rows bottom-up without flipping")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "also log to this file")
	fs.StringVarP(&f.Diffuse, "texture", "t", "", "diffuse texture for the model argument")
	fs.StringVar(&f.Normal, "normal", "", "tangent-space normal map for the model argument")
	fs.StringVar(&f.Specular, "specular", "", "specular map for the model argument")
	fs.BoolVar(&f.NoFit, "no-fit", false, "keep the model argument's original scale and origin")
}

// Resolve loads configuration with priority: defaults < file < flags, and
// validates the result.
func Resolve(f Flags) (*Config, error) {
	cfg := Default()

	path := f.ConfigPath
	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f Flags) {
	if f.Width > 0 {
		cfg.Render.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Render.Height = f.Height
	}
	if f.Workers > 0 {
		cfg.Render.Workers = f.Workers
	}
	if f.MinChunk > 0 {
		cfg.Render.MinChunk = f.MinChunk
	}
	if f.Background != "" {
		cfg.Render.Background = f.Background
	}
	if f.Output != "" {
		cfg.Output.Path = f.Output
	}
	if f.NoFlip {
		cfg.Render.Flip = false
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Model != "" {
		cfg.Objects = []ObjectConfig{{
			Model:    f.Model,
			Diffuse:  f.Diffuse,
			Normal:   f.Normal,
			Specular: f.Specular,
			Fit:      !f.NoFit,
		}}
	}
}
