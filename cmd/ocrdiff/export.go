package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // decoders for page image sizes
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrdiff/pkg/compare"
	"github.com/gardar/ocrdiff/pkg/highlight"
	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/source"
)

// fingerprint serializes the settings that shape the units of a document
func fingerprint(cfg compare.Config) ([]byte, error) {
	data, err := yaml.Marshal(struct {
		Source    source.Kind            `yaml:"source"`
		Lines     layout.Config          `yaml:"lines"`
		Footnotes compare.FootnoteConfig `yaml:"footnotes"`
		Genre     string                 `yaml:"genre"`
		DocAI     string                 `yaml:"docai"`
	}{cfg.Source, cfg.Lines, cfg.Footnotes, string(cfg.Genre), cfg.DocAI.ProcessorName()})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize settings: %w", err)
	}
	return data, nil
}

// exportHighlight writes a marked copy of the document at path. PDFs are
// marked in place; other inputs are rebuilt from their page images.
func exportHighlight(ctx context.Context, path, out string, images []string, boxes []highlight.Box,
	cfg compare.Config, force bool) error {
	hcfg := highlight.DefaultConfig()
	hcfg.Force = force
	hcfg.Logger = cfg.Logger

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err = highlightPDF(ctx, path, boxes, hcfg)
	} else {
		data, err = highlightImages(ctx, path, images, boxes, cfg, hcfg)
	}
	if err != nil {
		return fmt.Errorf("failed to mark %s: %w", path, err)
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.WithFields(logrus.Fields{"path": out, "boxes": len(boxes)}).Info("Saved marked document")
	return nil
}

func highlightPDF(ctx context.Context, path string, boxes []highlight.Box, hcfg highlight.Config) ([]byte, error) {
	input, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pages, err := pageBoxes(ctx, path, source.Options{Kind: source.KindPDF})
	if err != nil {
		return nil, err
	}
	return highlight.Apply(input, pages, boxes, hcfg)
}

// highlightImages draws the marks on page images. An image read by
// Document AI is its own single page, sized in pixels.
func highlightImages(ctx context.Context, path string, images []string, boxes []highlight.Box,
	cfg compare.Config, hcfg highlight.Config) ([]byte, error) {
	kind := cfg.Source
	if kind == source.KindAuto || kind == "" {
		var err error
		if kind, err = source.DetectKind(path); err != nil {
			return nil, err
		}
	}

	var pages []layout.BBox
	switch {
	case kind == source.KindDocAI && len(images) == 0:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		conf, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read image size: %w", err)
		}
		images = []string{path}
		pages = []layout.BBox{layout.NewBBox(0, 0, float64(conf.Width), float64(conf.Height))}
	case len(images) == 0:
		return nil, fmt.Errorf("page images are required to mark %s", filepath.Base(path))
	default:
		var err error
		if pages, err = pageBoxes(ctx, path, source.Options{Kind: kind, DocAI: cfg.DocAI}); err != nil {
			return nil, err
		}
	}

	imgs := make([][]byte, len(images))
	for i, p := range images {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		imgs[i] = data
	}
	return highlight.Assemble(imgs, pages, boxes, hcfg)
}

// pageBoxes returns the page box of every page of a document
func pageBoxes(ctx context.Context, path string, opts source.Options) ([]layout.BBox, error) {
	doc, err := source.Open(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pages := make([]layout.BBox, doc.PageCount())
	for i := range pages {
		if pages[i], err = doc.PageBox(i); err != nil {
			return nil, err
		}
	}
	return pages, nil
}
