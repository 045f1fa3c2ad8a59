// zraster - CPU scanline renderer for textured, normal-mapped meshes.
//
// Usage:
//
//	zraster render [model] [flags]  - render once and write an image
//	zraster view [model] [flags]    - spin the scene in the terminal
//
// Settings come from zraster.yaml (or --config) and are overridden by
// flags. A model argument replaces the objects of the config file.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zraster",
		Short: "Render textured OBJ and glTF meshes on the CPU",
		Long: "zraster rasterizes textured triangle meshes with per-pixel diffuse, " +
			"normal-map and specular-map shading into a depth-buffered image, " +
			"splitting the work across goroutines.",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newViewCmd())
	return root
}
