package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brandcast/pkg/config"
	"brandcast/pkg/logger"
	"brandcast/services/campaign/internal/catalog"
	"brandcast/services/campaign/internal/entity"
	"brandcast/services/campaign/internal/render"
)

type producer interface {
	Produce(ctx context.Context, tmpl entity.ContentTemplate) (*entity.RenderedAsset, error)
}

func main() {
	var catalogPath, outDir string
	flag.StringVar(&catalogPath, "catalog", "", "Path to a YAML catalog (defaults to CAMPAIGN_CATALOG_PATH, then the built-in catalog)")
	flag.StringVar(&outDir, "out", "preview", "Directory the PNG files are written to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if catalogPath == "" {
		catalogPath = cfg.CampaignCatalogPath
	}

	log := logger.New()

	templates := catalog.Default()
	if catalogPath != "" {
		templates, err = catalog.Load(catalogPath)
		if err != nil {
			log.Error("Failed to load catalog: %v", err)
			os.Exit(1)
		}
	}

	p, err := render.NewProducer(log)
	if err != nil {
		log.Error("Failed to create image producer: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	files, err := renderAll(ctx, p, templates, outDir)
	if err != nil {
		log.Error("Preview failed: %v", err)
		os.Exit(1)
	}

	log.Info("Rendered %d templates into %s", len(files), outDir)
}

// renderAll writes template-NN.png for every template and returns the paths.
func renderAll(ctx context.Context, p producer, templates []entity.ContentTemplate, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	files := make([]string, 0, len(templates))
	for i, tmpl := range templates {
		asset, err := p.Produce(ctx, tmpl)
		if err != nil {
			return files, fmt.Errorf("template %d: %w", i, err)
		}
		path := filepath.Join(outDir, fmt.Sprintf("template-%02d.png", i+1))
		if err := os.WriteFile(path, asset.Bytes, 0o644); err != nil {
			return files, fmt.Errorf("template %d: %w", i, err)
		}
		files = append(files, path)
	}
	return files, nil
}
