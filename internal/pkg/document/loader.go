package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/futig/docqa-bot/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ParseFunc extracts documents (usually one per page) from a file
type ParseFunc func(path string) ([]entity.Document, error)

// SourceValidator vets the matched files before any of them is parsed
type SourceValidator interface {
	ValidateSources(files []string) error
}

// Loader reads source files from a directory, dispatching on file extension
type Loader struct {
	parsers   map[string]ParseFunc
	validator SourceValidator
	// enabled extensions that cannot be parsed in this process, with the reason
	skipped map[string]string
}

type LoaderOption func(*Loader)

func WithValidator(v SourceValidator) LoaderOption {
	return func(l *Loader) {
		l.validator = v
	}
}

// WithSkipped turns the listed extensions off. Matching files are reported and
// left out of the run instead of failing it.
func WithSkipped(reason string, extensions ...string) LoaderOption {
	return func(l *Loader) {
		for _, ext := range extensions {
			l.skipped[strings.ToLower(ext)] = reason
		}
	}
}

// NewLoader enables the given extensions. Unknown extensions are ignored.
func NewLoader(extensions []string, opts ...LoaderOption) *Loader {
	known := map[string]ParseFunc{
		".pdf":  LoadPDF,
		".docx": LoadDOCX,
		".txt":  LoadText,
		".md":   LoadText,
	}

	l := &Loader{
		parsers: make(map[string]ParseFunc),
		skipped: make(map[string]string),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if parse, ok := known[ext]; ok {
			l.parsers[ext] = parse
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	for ext := range l.skipped {
		if _, ok := l.parsers[ext]; !ok {
			delete(l.skipped, ext)
			continue
		}
		delete(l.parsers, ext)
	}
	return l
}

// Extensions lists the enabled extensions in sorted order
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FindFiles lists matching files directly inside dir, sorted by name.
// A missing directory or one without matches is entity.ErrNoInput.
func (l *Loader) FindFiles(dir string) ([]string, error) {
	files, _, err := l.scan(dir)
	return files, err
}

// scan also returns the files whose extension is skipped
func (l *Loader) scan(dir string) ([]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: directory %s not found", entity.ErrNoInput, dir)
		}
		return nil, nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files, skipped []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := l.parsers[ext]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		} else if _, ok := l.skipped[ext]; ok {
			skipped = append(skipped, filepath.Join(dir, e.Name()))
		}
	}

	if len(files) == 0 {
		return nil, skipped, fmt.Errorf("%w: no %s files in %s", entity.ErrNoInput, strings.Join(l.Extensions(), "/"), dir)
	}
	sort.Strings(files)
	return files, skipped, nil
}

// LoadFile parses a single file; failures wrap entity.ErrLoadFailed
func (l *Loader) LoadFile(path string) ([]entity.Document, error) {
	parse, ok := l.parsers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %s", entity.ErrLoadFailed, path)
	}

	docs, err := parse(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", entity.ErrLoadFailed, filepath.Base(path), err)
	}
	return docs, nil
}

// LoadDir parses every matching file in dir. Pages without text are dropped.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]entity.Document, error) {
	files, skipped, err := l.scan(dir)
	for _, file := range skipped {
		ctxzap.Warn(ctx, "source file skipped",
			zap.String("file", filepath.Base(file)),
			zap.String("reason", l.skipped[strings.ToLower(filepath.Ext(file))]),
		)
	}
	if err != nil {
		return nil, err
	}
	if l.validator != nil {
		if err := l.validator.ValidateSources(files); err != nil {
			return nil, err
		}
	}

	var docs []entity.Document
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loaded, err := l.LoadFile(file)
		if err != nil {
			return nil, err
		}
		for _, d := range loaded {
			if strings.TrimSpace(d.Text) != "" {
				docs = append(docs, d)
			}
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no extractable text in %s", entity.ErrNoInput, dir)
	}
	return docs, nil
}

func metadata(path string) map[string]string {
	return map[string]string{
		entity.MetaSource: filepath.Base(path),
		entity.MetaPath:   path,
	}
}
