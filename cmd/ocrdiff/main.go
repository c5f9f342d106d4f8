// ocrdiff is a command-line tool for comparing two digitized versions of a
// document and showing where their text differs.
//
// The documents can be PDFs with a text layer, hOCR files, or scans read
// with Google Document AI. Their text is rebuilt into lines, footnotes are
// removed, the lines are grouped into paragraphs or verses, and the two
// sequences are aligned and diffed.
//
// Configuration:
//
// Every option has a default; a YAML file given with -c overrides them:
//
//	genre: verse
//	align: {accept_threshold: 0.7, high_confidence_threshold: 0.93, strategy: greedy}
//	docai: {project_id: "your-gcp-project-id", location: "us", processor_id: "your-processor-id"}
//
// Usage:
//
//	ocrdiff compare a.pdf b.pdf [--json] [--diffs] [--highlight-a out_a.pdf] [--highlight-b out_b.pdf]
//	ocrdiff extract a.pdf [--fonts] [--json]
//	ocrdiff segment a.pdf [--out units.json.xz]
//	ocrdiff ocr scan.tiff [--raw response.json] [--text]
//
// Authentication:
//
// Document AI uses the GOOGLE_APPLICATION_CREDENTIALS environment variable,
// which may also be set in a .env file in the working directory.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrdiff/pkg/align"
	"github.com/gardar/ocrdiff/pkg/compare"
	"github.com/gardar/ocrdiff/pkg/footnote"
	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/source"
)

const version = "0.1.0"

var log = logrus.New()

// Globals are the options shared by every command
type Globals struct {
	Config          string `short:"c" help:"Path to a YAML config file" type:"existingfile"`
	LogLevel        string `name:"log-level" help:"Log level (${enum})" enum:"debug,info,warn,error" default:"info"`
	Source          string `help:"Document backend: auto, pdf, hocr or docai"`
	Genre           string `help:"Segmentation genre: auto, prose or verse"`
	Strategy        string `help:"Alignment strategy: greedy or global"`
	NoFootnotes     bool   `name:"no-footnotes" help:"Keep footnote regions"`
	DropLineNumbers bool   `name:"drop-line-numbers" help:"Remove marginal line numbers"`
	NotePatterns    bool   `name:"note-patterns" help:"Drop lines that look like apparatus or notes"`
}

// config loads the config file and applies the command-line overrides
func (g *Globals) config() (compare.Config, error) {
	cfg := compare.DefaultConfig()
	if g.Config != "" {
		var err error
		if cfg, err = compare.LoadConfig(g.Config); err != nil {
			return cfg, err
		}
	}

	if g.Source != "" {
		kind, err := source.ParseKind(g.Source)
		if err != nil {
			return cfg, err
		}
		cfg.Source = kind
	}
	if g.Genre != "" {
		genre, err := segment.ParseGenre(g.Genre)
		if err != nil {
			return cfg, err
		}
		cfg.Genre = genre
	}
	if g.Strategy != "" {
		cfg.Align.Strategy = align.Strategy(g.Strategy)
	}
	if g.NoFootnotes {
		cfg.Footnotes.Enabled = false
	}
	if g.DropLineNumbers {
		cfg.Footnotes.DropLineNumbers = true
	}
	if g.NotePatterns {
		cfg.Footnotes.Patterns = append(cfg.Footnotes.Patterns, footnote.DefaultPatterns...)
	}
	cfg.Logger = log

	if err := cfg.Normalize(); err != nil {
		return cfg, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// CLI defines the command-line interface for ocrdiff
var CLI struct {
	Globals

	Compare CompareCmd `cmd:"" help:"Compare two documents"`
	Extract ExtractCmd `cmd:"" help:"Print the reconstructed lines of a document"`
	Segment SegmentCmd `cmd:"" help:"Print or save the units of a document"`
	OCR     OCRCmd     `cmd:"" name:"ocr" help:"Run Document AI on a file and print its lines"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("ocrdiff", version)
	return nil
}

func main() {
	// A missing .env file is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("ocrdiff"),
		kong.Description("Align and diff the text of two OCR'd documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(CLI.LogLevel)
	ctx.FatalIfErrorf(err)
	log.SetLevel(level)

	err = ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
