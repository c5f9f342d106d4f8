package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrdiff/pkg/compare"
	"github.com/gardar/ocrdiff/pkg/gdocai"
	"github.com/gardar/ocrdiff/pkg/highlight"
	"github.com/gardar/ocrdiff/pkg/layout"
	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/source"
	"github.com/gardar/ocrdiff/pkg/unitcache"
	"github.com/gardar/ocrdiff/pkg/unitio"
)

// CompareCmd compares two documents
type CompareCmd struct {
	A string `arg:"" help:"First document" type:"existingfile"`
	B string `arg:"" help:"Second document" type:"existingfile"`

	JSON  bool   `help:"Print the report as JSON"`
	Diffs bool   `help:"Show the word changes of matched units"`
	Out   string `short:"o" help:"Write the report to a file instead of stdout" type:"path"`

	HighlightA string   `name:"highlight-a" help:"Write a copy of the first document with its differences marked" type:"path"`
	HighlightB string   `name:"highlight-b" help:"Write a copy of the second document with its differences marked" type:"path"`
	ImagesA    []string `name:"images-a" help:"Page images of the first document, for hOCR input" type:"existingfile"`
	ImagesB    []string `name:"images-b" help:"Page images of the second document, for hOCR input" type:"existingfile"`
	Force      bool     `help:"Mark documents that already carry a difference layer"`

	DumpUnitsA string `name:"dump-units-a" help:"Save the units of the first document (JSON, .xz to compress)" type:"path"`
	DumpUnitsB string `name:"dump-units-b" help:"Save the units of the second document (JSON, .xz to compress)" type:"path"`
	Cache       string        `help:"SQLite file caching the units of each document" type:"path"`
	CacheMaxAge time.Duration `name:"cache-max-age" help:"Drop cached units older than this (e.g. 720h); 0 keeps them" default:"0"`
}

func (c *CompareCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := g.config()
	if err != nil {
		return err
	}

	var cache *unitcache.Cache
	if c.Cache != "" {
		if cache, err = unitcache.Open(c.Cache); err != nil {
			return err
		}
		defer cache.Close()
		if err := pruneCache(ctx, cache, c.CacheMaxAge); err != nil {
			return err
		}
	}

	unitsA, err := loadUnits(ctx, c.A, cfg, cache)
	if err != nil {
		return fmt.Errorf("failed to process first document: %w", err)
	}
	unitsB, err := loadUnits(ctx, c.B, cfg, cache)
	if err != nil {
		return fmt.Errorf("failed to process second document: %w", err)
	}

	res := compare.CompareUnits(unitsA, unitsB, cfg)
	res.PathA, res.PathB = c.A, c.B

	if err := dumpUnits(c.DumpUnitsA, unitsA); err != nil {
		return err
	}
	if err := dumpUnits(c.DumpUnitsB, unitsB); err != nil {
		return err
	}

	if err := c.writeReport(res); err != nil {
		return err
	}

	if c.HighlightA != "" || c.HighlightB != "" {
		boxesA, boxesB := highlight.ResultBoxes(res)
		if c.HighlightA != "" {
			if err := exportHighlight(ctx, c.A, c.HighlightA, c.ImagesA, boxesA, cfg, c.Force); err != nil {
				return err
			}
		}
		if c.HighlightB != "" {
			if err := exportHighlight(ctx, c.B, c.HighlightB, c.ImagesB, boxesB, cfg, c.Force); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *CompareCmd) writeReport(res *compare.Result) error {
	var w io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		w = f
	}
	if c.JSON {
		return writeJSON(w, res)
	}
	return writeTextReport(w, res, c.Diffs)
}

// loadUnits segments a document, going through the cache when one is open
func loadUnits(ctx context.Context, path string, cfg compare.Config, cache *unitcache.Cache) ([]segment.Unit, error) {
	if cache == nil {
		return compare.Units(ctx, path, cfg)
	}

	settings, err := fingerprint(cfg)
	if err != nil {
		return nil, err
	}
	key, err := unitcache.KeyFile(path, settings)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(logrus.Fields{"path": path, "key": key[:12]})

	units, ok, err := cache.Get(ctx, key)
	switch {
	case err != nil:
		logger.WithError(err).Warn("Ignoring unit cache")
	case ok:
		logger.WithField("units", len(units)).Debug("Unit cache hit")
		return units, nil
	}

	units, err = compare.Units(ctx, path, cfg)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(ctx, key, path, units); err != nil {
		logger.WithError(err).Warn("Failed to cache units")
	}
	return units, nil
}

// pruneCache drops entries older than maxAge and logs what is left
func pruneCache(ctx context.Context, cache *unitcache.Cache, maxAge time.Duration) error {
	if maxAge > 0 {
		n, err := cache.Prune(ctx, time.Now().Add(-maxAge))
		if err != nil {
			return err
		}
		if n > 0 {
			log.WithFields(logrus.Fields{"removed": n, "max_age": maxAge}).Info("Pruned unit cache")
		}
	}
	left, err := cache.Len(ctx)
	if err != nil {
		return err
	}
	log.WithField("entries", left).Debug("Unit cache ready")
	return nil
}

func dumpUnits(path string, units []segment.Unit) error {
	if path == "" {
		return nil
	}
	if err := unitio.Save(path, units); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"path": path, "units": len(units)}).Info("Saved units")
	return nil
}

// ExtractCmd prints the lines of a document
type ExtractCmd struct {
	Path  string `arg:"" help:"Document" type:"existingfile"`
	Raw   bool   `help:"Keep footnote regions and skip the line filters"`
	Fonts bool   `help:"Print the font size histogram instead of the lines"`
	JSON  bool   `help:"Print the lines as JSON"`
}

func (c *ExtractCmd) Run(g *Globals) error {
	ctx := context.Background()
	cfg, err := g.config()
	if err != nil {
		return err
	}

	if c.Fonts {
		spans, err := documentSpans(ctx, c.Path, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Body font size: %.1f\n", layout.BodyFontSize(spans))
		for _, b := range layout.FontHistogram(spans) {
			fmt.Printf("%6.1f %6d\n", b.Size, b.Count)
		}
		return nil
	}

	lines, err := compare.ExtractLines(ctx, c.Path, cfg)
	if err != nil {
		return err
	}
	if !c.Raw {
		lines = compare.StripFootnotes(lines, cfg)
	}
	if c.JSON {
		return writeJSON(os.Stdout, lines)
	}
	for _, l := range lines {
		fmt.Printf("%d\t%s\n", l.Page, l.Text)
	}
	return nil
}

// documentSpans reads the spans of every page, skipping unreadable pages
func documentSpans(ctx context.Context, path string, cfg compare.Config) ([]layout.Span, error) {
	doc, err := source.Open(ctx, path, source.Options{Kind: cfg.Source, DocAI: cfg.DocAI})
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	var spans []layout.Span
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Spans(i)
		if err != nil {
			log.WithError(err).WithField("page", i+1).Warn("Skipping unreadable page")
			continue
		}
		spans = append(spans, page...)
	}
	return spans, nil
}

// SegmentCmd prints or saves the units of a document
type SegmentCmd struct {
	Path string `arg:"" help:"Document" type:"existingfile"`
	Out  string `short:"o" help:"Save the units (JSON, .xz to compress) instead of printing them" type:"path"`
}

func (c *SegmentCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	units, err := compare.Units(context.Background(), c.Path, cfg)
	if err != nil {
		return err
	}
	if c.Out != "" {
		return dumpUnits(c.Out, units)
	}
	for _, u := range units {
		fmt.Printf("%d\t%d\t%s\t%s\n", u.ID, u.Page, u.Type, u.Text)
	}
	return nil
}

// OCRCmd runs Document AI on a file and prints the lines it found
type OCRCmd struct {
	Path string `arg:"" help:"PDF or image file" type:"existingfile"`
	Raw  string `help:"Save the raw API response as JSON for debugging purposes" type:"path"`
	Text bool   `help:"Print the plain OCR text instead of the reconstructed lines"`
}

func (c *OCRCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	mime, ok := source.MimeType(c.Path)
	if !ok {
		return fmt.Errorf("%w: %s", source.ErrUnsupported, c.Path)
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	resp, err := gdocai.ProcessDocument(context.Background(), data, mime, cfg.DocAI)
	if err != nil {
		return fmt.Errorf("error processing document: %w", err)
	}

	if c.Raw != "" {
		js, err := gdocai.ToJSON(resp)
		if err != nil {
			return fmt.Errorf("failed to convert response to JSON: %w", err)
		}
		if err := os.WriteFile(c.Raw, []byte(js), 0o644); err != nil {
			return fmt.Errorf("failed to write raw response: %w", err)
		}
		log.WithField("path", c.Raw).Info("Saved raw API response")
	}

	doc := gdocai.ToHOCR(resp)
	if c.Text {
		fmt.Print(doc.Text())
		return nil
	}
	for i, p := range doc.Pages {
		for _, l := range layout.ReconstructPage(p.Spans(i+1, layout.BBox{}), cfg.Lines) {
			fmt.Printf("%d\t%s\n", l.Page, l.Text)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
