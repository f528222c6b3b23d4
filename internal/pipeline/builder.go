// Package pipeline orchestrates a site build: discover note files, parse
// them in parallel, merge into one canonical document, resolve navigation,
// and render pages to the output sink.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/notesite/internal/config"
	"github.com/dgallion1/notesite/internal/doctree"
	"github.com/dgallion1/notesite/internal/merge"
	"github.com/dgallion1/notesite/internal/nav"
	"github.com/dgallion1/notesite/internal/parser"
	"github.com/dgallion1/notesite/internal/render"
)

// Builder runs complete site builds. Each build allocates fresh state and
// discards it on completion; nothing persists between builds.
type Builder struct {
	cfg   config.Config
	log   *slog.Logger
	stats *BuildStats
}

func NewBuilder(cfg config.Config, log *slog.Logger) *Builder {
	return &Builder{
		cfg:   cfg,
		log:   log,
		stats: NewBuildStats(time.Hour),
	}
}

// Stats exposes the rolling build-latency window (used by the preview
// server's stats endpoint).
func (b *Builder) Stats() *BuildStats {
	return b.stats
}

// Result summarizes one build.
type Result struct {
	Documents int
	Sections  int
	Pages     int
	Conflicts int
	Duration  time.Duration
}

// Build runs the full pipeline and writes pages under outputDir. Link
// resolution errors are fatal and abort before rendering; parse problems
// and content conflicts degrade with a warning.
func (b *Builder) Build(ctx context.Context, inputDir, outputDir string) (*Result, error) {
	start := time.Now()

	files, err := discover(inputDir)
	if err != nil {
		return nil, fmt.Errorf("discover notes: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no note files found under %s", inputDir)
	}

	docs := b.parseAll(ctx, inputDir, files)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canonical, warnings := merge.Merge(docs, merge.Options{Threshold: b.cfg.Merge.Threshold})
	for _, w := range warnings {
		b.log.Warn("content conflict",
			"path", strings.Join(w.Path, " > "),
			"sources", strings.Join(w.Sources, ", "),
			"min_similarity", w.MinScore,
		)
	}

	toc := nav.BuildToc(canonical)
	links, err := nav.ResolveLinks(canonical, toc)
	if err != nil {
		return nil, fmt.Errorf("resolve links: %w", err)
	}

	r := render.New(b.cfg.Site.Title, b.cfg.Site.PageLevel,
		render.NewChromaHighlighter(b.cfg.Render.HighlightStyle), b.log)
	pages, err := r.Render(canonical, toc, links)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	sink := render.NewDirSink(outputDir)
	for _, p := range pages {
		if err := sink.WritePage(p); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Documents: len(docs),
		Sections:  len(canonical.Sections),
		Pages:     len(pages),
		Conflicts: len(warnings),
		Duration:  time.Since(start),
	}
	b.stats.Record(res.Duration.Milliseconds())
	b.log.Info("build complete",
		"documents", res.Documents,
		"sections", res.Sections,
		"pages", res.Pages,
		"conflicts", res.Conflicts,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// parseAll parses note files with bounded concurrency. Results keep the
// discovery order regardless of completion order, so builds stay
// deterministic. A file that fails to parse is logged and skipped; it
// never aborts the build.
func (b *Builder) parseAll(ctx context.Context, inputDir string, files []string) []*doctree.Document {
	type parseResult struct {
		idx int
		doc *doctree.Document
		err error
	}

	results := make(chan parseResult, len(files))
	sem := make(chan struct{}, b.cfg.Build.Workers)

	for i, rel := range files {
		sem <- struct{}{}
		go func(i int, rel string) {
			defer func() { <-sem }()
			doc, err := parseFile(inputDir, rel)
			select {
			case results <- parseResult{idx: i, doc: doc, err: err}:
			case <-ctx.Done():
			}
		}(i, rel)
	}

	ordered := make([]*doctree.Document, len(files))
	for range files {
		select {
		case r := <-results:
			if r.err != nil {
				b.log.Warn("skipping unparseable note", "file", files[r.idx], "error", r.err)
				continue
			}
			ordered[r.idx] = r.doc
		case <-ctx.Done():
			return nil
		}
	}

	docs := make([]*doctree.Document, 0, len(files))
	for _, d := range ordered {
		if d != nil {
			docs = append(docs, d)
		}
	}
	return docs
}

func parseFile(inputDir, rel string) (*doctree.Document, error) {
	p, err := parser.ForFile(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(inputDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, rel)
}

// discover walks the input directory and returns the supported note files
// as sorted slash-separated relative paths. Sorting fixes the document
// order the merger sees, which fixes tie-breaks and output order.
func discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != inputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !parser.IsSupportedExtension(path) {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
