package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pipe01/trellis/internal/parser"
	"github.com/pipe01/trellis/internal/parser/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Workspace loads markup documents relative to a root directory, parsing each
// file at most once.
type Workspace struct {
	rootPath string

	mu          sync.Mutex
	parsedFiles map[string]*ast.Document
}

func New(rootPath string) *Workspace {
	return &Workspace{
		rootPath:    rootPath,
		parsedFiles: make(map[string]*ast.Document),
	}
}

func (w *Workspace) fullPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return filepath.Clean(relPath)
	}
	return filepath.Join(w.rootPath, relPath)
}

// Load reads and parses the file at relPath. The returned error is either an
// I/O error or the document's fatal *diag.Error.
func (w *Workspace) Load(relPath string) (*ast.Document, error) {
	fullPath := w.fullPath(relPath)

	w.mu.Lock()
	doc, ok := w.parsedFiles[fullPath]
	w.mu.Unlock()

	if ok {
		return doc, nil
	}

	bytes, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return w.LoadWithContents(relPath, bytes)
}

// LoadWithContents parses contents as the file at relPath, replacing anything
// previously loaded for it.
func (w *Workspace) LoadWithContents(relPath string, contents []byte) (*ast.Document, error) {
	fullPath := w.fullPath(relPath)

	doc, err := parser.Parse(contents, relPath)
	if err != nil {
		w.Forget(relPath)
		return nil, err
	}

	w.mu.Lock()
	w.parsedFiles[fullPath] = doc
	w.mu.Unlock()

	return doc, nil
}

// Forget drops the cached document for relPath so the next Load reads it
// again.
func (w *Workspace) Forget(relPath string) {
	w.mu.Lock()
	delete(w.parsedFiles, w.fullPath(relPath))
	w.mu.Unlock()
}

// LoadedFiles returns the full paths of the documents currently loaded, sorted.
func (w *Workspace) LoadedFiles() []string {
	w.mu.Lock()
	files := maps.Keys(w.parsedFiles)
	w.mu.Unlock()

	slices.Sort(files)
	return files
}
