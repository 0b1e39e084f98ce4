package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"crackvector/pkg/config"
	"crackvector/pkg/cvm"
	"crackvector/pkg/diagnostics"
	"crackvector/pkg/imageio"
	"crackvector/pkg/visualization"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "crackvector.yaml", "YAML configuration file (defaults are used when missing)")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to -config and exit")
	segPath := flag.String("seg", "", "Segmentation image of a single slab")
	rangePath := flag.String("range", "", "Range image matching -seg")
	widthFromRange := flag.Bool("width-from-range", false, "Scan widths on the range image instead of the segmentation")
	geometryPath := flag.String("geojson", "", "Rebuild the model from an exported branch geometry instead of -seg")
	outPath := flag.String("out", "", "Write the branch geometry of a single build to this GeoJSON file")
	overlayPath := flag.String("overlay", "", "Render an overlay of a single build (.png, .jpg or .webp)")
	skeletonPath := flag.String("skeleton", "", "Save the skeleton of -seg as an image")
	batchDir := flag.String("batch", "", "Directory of segmentation images to process in parallel")
	rangeDir := flag.String("range-dir", "", "Directory of range images named like the -batch images")
	outDir := flag.String("out-dir", "crackvector_out", "Output directory for batch geometry and overlays")
	numCores := flag.Int("cores", 0, "Number of batch workers (default: processing.numCores)")
	verbose := flag.Bool("verbose", false, "Log every topology diagnostic")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *verbose {
		cfg.Output.Verbose = true
	}

	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	cvm.SetLogger(logger)

	switch {
	case *batchDir != "":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := runBatch(ctx, cfg, *batchDir, *rangeDir, *outDir, *widthFromRange); err != nil {
			log.Fatalf("Batch failed: %v", err)
		}
	case *segPath != "" || *geometryPath != "":
		single := singleRun{
			segPath:        *segPath,
			rangePath:      *rangePath,
			geometryPath:   *geometryPath,
			widthFromRange: *widthFromRange,
			outPath:        *outPath,
			overlayPath:    *overlayPath,
			skeletonPath:   *skeletonPath,
		}
		if err := single.run(cfg, logger); err != nil {
			log.Fatalf("Build failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(1)
	}
}

type singleRun struct {
	segPath        string
	rangePath      string
	geometryPath   string
	widthFromRange bool
	outPath        string
	overlayPath    string
	skeletonPath   string
}

func (s singleRun) run(cfg *config.Config, logger *slog.Logger) error {
	opts := cfg.Options()
	diag := diagnostics.NewCollector(logger)

	b := cvm.NewBuilder(opts).WithDiagnostics(diag)
	if s.geometryPath != "" {
		b.UseGeometryFile(s.geometryPath)
	}
	if s.segPath != "" {
		b.UseSegmentationFile(s.segPath)
	}
	if s.rangePath != "" {
		b.UseRangeFile(s.rangePath)
	}
	if s.widthFromRange {
		b.UseRangeForWidth()
	}

	startTime := time.Now()
	model, err := b.Build()
	if err != nil {
		return err
	}
	printStats(model.Stats(), time.Since(startTime))
	fmt.Printf("Dropped branches: %d, soft ambiguities: %d\n",
		len(diagnostics.Dropped(diag.Entries())), diag.Count(diagnostics.Soft))

	if s.outPath != "" {
		if err := model.WriteGeoJSON(s.outPath); err != nil {
			return err
		}
		fmt.Printf("Branch geometry saved to: %s\n", s.outPath)
	}

	if s.skeletonPath != "" || s.overlayPath != "" {
		if s.segPath == "" {
			return fmt.Errorf("-skeleton and -overlay need -seg")
		}
		seg, err := imageio.LoadSegmentation(s.segPath, opts.BinarizeThreshold)
		if err != nil {
			return err
		}
		if s.skeletonPath != "" {
			if err := visualization.SaveSkeleton(cvm.Skeletonize(seg.NonZero()), s.skeletonPath); err != nil {
				return err
			}
			fmt.Printf("Skeleton saved to: %s\n", s.skeletonPath)
		}
		if s.overlayPath != "" {
			if err := visualization.NewViewer(model, seg).Save(s.overlayPath); err != nil {
				return err
			}
			fmt.Printf("Overlay saved to: %s\n", s.overlayPath)
		}
	}
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, segDir, rangeDir, outDir string, widthFromRange bool) error {
	jobs, err := cvm.JobsFromDir(segDir, rangeDir)
	if err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].UseRangeForWidth = widthFromRange
	}

	fmt.Printf("Processing %d images with %d workers...\n", len(jobs), cfg.Processing.NumCores)
	startTime := time.Now()
	results := cvm.RunBatch(ctx, jobs, cfg.Options(), cfg.Processing.NumCores)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	failed := 0
	var totalLength float64
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Printf("  %-32s FAILED: %v\n", res.Job.Name, res.Err)
			continue
		}
		totalLength += res.Stats.TotalLength
		fmt.Printf("  %-32s branches: %4d  junctions: %4d  length: %9.1f mm  mean width: %6.2f mm  dropped: %d\n",
			res.Job.Name, res.Stats.Branches, res.Stats.Intersections, res.Stats.TotalLength, res.Stats.MeanWidth,
			len(diagnostics.Dropped(res.Diagnostics)))

		base := strings.TrimSuffix(res.Job.Name, filepath.Ext(res.Job.Name))
		if err := res.Model.WriteGeoJSON(filepath.Join(outDir, base+".geojson")); err != nil {
			return err
		}
		if cfg.Output.Overlay {
			seg, err := imageio.LoadSegmentation(res.Job.SegmentationPath, cfg.Input.BinarizeThreshold)
			if err != nil {
				return err
			}
			overlay := filepath.Join(outDir, base+"_overlay."+cfg.Output.OverlayFormat)
			if err := visualization.NewViewer(res.Model, seg).Save(overlay); err != nil {
				return err
			}
		}
	}

	fmt.Printf("\nBatch completed in %.2f seconds\n", time.Since(startTime).Seconds())
	fmt.Printf("- Images: %d (%d failed)\n", len(results), failed)
	fmt.Printf("- Total crack length: %.1f mm\n", totalLength)
	fmt.Printf("- Output saved to: %s\n", outDir)
	if failed == len(results) {
		return fmt.Errorf("all %d images failed", failed)
	}
	return nil
}

func printStats(stats cvm.Stats, elapsed time.Duration) {
	fmt.Printf("Crack vector model built in %.3f seconds\n", elapsed.Seconds())
	fmt.Printf("- Branches: %d\n", stats.Branches)
	fmt.Printf("- Junctions: %d\n", stats.Intersections)
	fmt.Printf("- Total length: %.1f mm\n", stats.TotalLength)
	fmt.Printf("- Width: mean %.2f mm, std %.2f mm, max %.2f mm over %d samples\n",
		stats.MeanWidth, stats.WidthStdDev, stats.MaxWidth, stats.WidthSamples)
}
