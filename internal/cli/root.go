package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/rulebook/internal/config"
	"github.com/dgallion1/rulebook/internal/doctree"
	"github.com/dgallion1/rulebook/internal/parser"
	"github.com/dgallion1/rulebook/internal/source"
	"github.com/dgallion1/rulebook/internal/version"
	"github.com/spf13/cobra"
)

var cfg = config.Load()

var (
	verbose       bool
	skipPages     int
	startPage     int
	footer        string
	overridesFile string
	sourceLoc     string
)

var rootCmd = &cobra.Command{
	Use:   "rulebook",
	Short: "Turn a numbered rulebook PDF into a section tree",
	Long: `rulebook extracts the text of a rulebook (PDF, DOCX, HTML or plain text),
splits it into numbered sections such as 1., 1.2. and 1.2.3., links them into
a tree and renders the result as markdown.

Defaults come from the same RULEBOOK_* environment variables as the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("rulebook %s\n", version.String()))

	f := rootCmd.PersistentFlags()
	f.StringVarP(&sourceLoc, "source", "s", cfg.Source, "URL or path of the document")
	f.IntVar(&skipPages, "skip-pages", cfg.SkipPages, "Leading pages (cover, contents) to drop")
	f.IntVar(&startPage, "start-page", cfg.StartPage, "Number of the first page after the skipped ones")
	f.StringVar(&footer, "footer", cfg.FooterPattern, "Regular expression matching the per-page footer")
	f.StringVar(&overridesFile, "overrides", cfg.OverridesFile, "JSON file of per-section formatter overrides")
	f.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadDocument fetches and parses the document named by the flags.
func loadDocument(ctx context.Context) (*doctree.Document, error) {
	c := cfg
	c.Source = sourceLoc
	c.SkipPages = skipPages
	c.StartPage = startPage
	c.FooterPattern = footer
	c.OverridesFile = overridesFile
	if err := c.ValidateDocument(); err != nil {
		return nil, err
	}

	log := newLogger()
	opts, err := c.DocumentOptions(log)
	if err != nil {
		return nil, err
	}
	ex, err := parser.ForFile(c.Source, c.PDFFallbackPdftotext)
	if err != nil {
		return nil, err
	}
	src := source.ForLocation(c.Source, c.FetchTimeout, c.MaxUploadBytes)
	if hs, ok := src.(*source.HTTPSource); ok {
		hs.Log = log
		defer hs.Close()
	}

	doc := doctree.New(opts)
	if err := doc.Parse(ctx, src, ex); err != nil {
		return nil, err
	}
	return doc, nil
}
