package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/zraster/internal/config"
	"github.com/taigrr/zraster/internal/logger"
	"github.com/taigrr/zraster/pkg/models"
	"github.com/taigrr/zraster/pkg/render"
	"github.com/taigrr/zraster/pkg/scene"
	"go.uber.org/zap"
)

func newRenderCmd() *cobra.Command {
	var flags config.Flags
	cmd := &cobra.Command{
		Use:   "render [model]",
		Short: "Render the scene once and save it as an image",
		Example: "  zraster render head.obj -t head_diffuse.tga --normal head_nm.tga -o head.png\n" +
			"  zraster render --config scene.yaml",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.Model = args[0]
			}
			cfg, err := config.Resolve(flags)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return err
			}
			defer logger.Sync()

			s, err := buildScene(cfg)
			if err != nil {
				logger.Error("build scene", zap.Error(err))
				return err
			}

			fb, err := s.DrawContext(cmd.Context())
			if err != nil {
				logger.Error("draw", zap.Error(err))
				return err
			}
			if cfg.Render.Flip {
				fb.FlipVertically()
			}
			if err := fb.Save(cfg.Output.Path); err != nil {
				logger.Error("save image", zap.String("path", cfg.Output.Path), zap.Error(err))
				return err
			}

			st := s.Stats()
			logger.Info("rendered",
				zap.String("output", cfg.Output.Path),
				zap.Int("width", fb.Width),
				zap.Int("height", fb.Height),
				zap.Int("triangles", s.TriangleCount()),
				zap.Int64("drawn", st.Drawn),
				zap.Int64("culled", st.Culled),
				zap.Int("jobs", st.Jobs),
				zap.Duration("elapsed", st.Duration),
			)
			return nil
		},
	}
	flags.Register(cmd.Flags())
	return cmd
}

// buildScene loads every configured object into a new scene.
func buildScene(cfg *config.Config) (*scene.Scene, error) {
	if len(cfg.Objects) == 0 {
		return nil, fmt.Errorf("no objects to render: pass a model or list objects in %s", config.FileName)
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	s := scene.New(cfg.Render.Height, cfg.Render.Width, cfg.Camera.Light.Vec(),
		scene.WithWorkers(cfg.Render.Workers),
		scene.WithMinChunk(cfg.Render.MinChunk),
		scene.WithBackground(bg),
		scene.WithEye(cfg.Camera.Eye.Vec()),
		scene.WithUp(cfg.Camera.Up.Vec()),
		scene.WithSpecularWeight(cfg.Render.SpecularWeight),
		scene.WithLogger(logger.Named("scene")),
	)

	for _, oc := range cfg.Objects {
		obj, err := loadObject(oc)
		if err != nil {
			return nil, err
		}
		s.AddObject(obj)
	}
	return s, nil
}

// loadObject loads a model and its maps. glTF files without an explicit
// diffuse map fall back to their first embedded image.
func loadObject(oc config.ObjectConfig) (*scene.Object, error) {
	mesh, err := models.Load(oc.Model)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if oc.Fit {
		mesh.FitUnit()
	}
	logger.Info("loaded model",
		zap.String("model", filepath.Base(oc.Model)),
		zap.Int("triangles", mesh.TriangleCount()),
	)

	var maps render.Maps
	if maps.Diffuse, err = loadMap(oc.Diffuse, render.FormatRGBA); err != nil {
		return nil, err
	}
	if maps.Normal, err = loadMap(oc.Normal, render.FormatRGBA); err != nil {
		return nil, err
	}
	if maps.Specular, err = loadMap(oc.Specular, render.FormatGrey); err != nil {
		return nil, err
	}

	if maps.Diffuse == nil && isGLTF(oc.Model) {
		img, err := models.LoadGLTFTexture(oc.Model)
		if err != nil {
			return nil, fmt.Errorf("load embedded texture: %w", err)
		}
		if img != nil {
			maps.Diffuse = render.TextureFromImage(img, render.FormatRGBA)
			logger.Info("using embedded texture",
				zap.Int("width", maps.Diffuse.Width),
				zap.Int("height", maps.Diffuse.Height),
			)
		}
	}

	obj := scene.NewObject(mesh, oc.Position.Vec(), maps)
	if oc.Rotate[0] != 0 {
		obj.RotateX(oc.Rotate[0])
	}
	if oc.Rotate[1] != 0 {
		obj.RotateY(oc.Rotate[1])
	}
	if oc.Rotate[2] != 0 {
		obj.RotateZ(oc.Rotate[2])
	}
	return obj, nil
}

func loadMap(path string, format render.Format) (*render.Texture, error) {
	if path == "" {
		return nil, nil
	}
	tex, err := render.LoadTexture(path, format)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded texture",
		zap.String("path", path),
		zap.Stringer("format", format),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
	)
	return tex, nil
}

func isGLTF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".gltf" || ext == ".glb"
}
