package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives rendered pages. The renderer makes no I/O decisions
// itself; the caller chooses where pages land.
type Sink interface {
	WritePage(page Page) error
}

// DirSink writes pages under a root directory.
type DirSink struct {
	root string
}

func NewDirSink(root string) *DirSink {
	return &DirSink{root: root}
}

func (s *DirSink) WritePage(page Page) error {
	path := filepath.Join(s.root, filepath.FromSlash(page.Path))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, page.Body, 0o644); err != nil {
		return fmt.Errorf("write page %s: %w", page.Path, err)
	}
	return nil
}

// MemorySink collects pages in memory, for tests and previews.
type MemorySink struct {
	Pages []Page
}

func (s *MemorySink) WritePage(page Page) error {
	s.Pages = append(s.Pages, page)
	return nil
}
