// Command mkv2image converts a recorded depth-camera session (.mkv) into
// per-modality sequences of timestamped image files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mkvtools/mkv2image/internal/config"
	"github.com/mkvtools/mkv2image/internal/mkv"
	"github.com/mkvtools/mkv2image/internal/pipeline"
	"github.com/mkvtools/mkv2image/internal/transform"
)

func main() {
	cfg := config.NewDefaultConfig()

	flag.StringVar(&cfg.InputPath, "input", "", "path to input mkv file (required)")
	flag.BoolVar(&cfg.Scaling, "scaling", cfg.Scaling,
		"scale depth and infrared to 8bit images; false writes raw 16bit rasters")
	flag.BoolVar(&cfg.Transform, "transform", cfg.Transform,
		"transform the depth image to the color camera")
	flag.IntVar(&cfg.Quality, "quality", cfg.Quality,
		"jpeg encoding quality for infrared [0-100]")
	flag.BoolVar(&cfg.Display, "display", cfg.Display,
		"display each image in a window while exporting; displayed images are always scaled")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("invalid arguments", "error", err)
	}

	source, err := mkv.Open(cfg.InputPath)
	if err != nil {
		sugar.Fatalw("failed to open recording", "path", cfg.InputPath, "error", err)
	}

	p := pipeline.New(cfg, source, transform.DepthToColor)
	p.SetLogger(sugar)

	if err := p.Run(); err != nil {
		sugar.Fatalw("export failed", "error", err)
	}
}
