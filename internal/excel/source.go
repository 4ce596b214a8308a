package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/wordcards/pkg/models"
)

const bookFilePrefix = "wordBook_"

var bookExtensions = []string{".json", ".xlsx", ".csv"}

// FileSource serves word-books from files in a directory. A book named
// "verbs" is read from verbs.json, verbs.xlsx or verbs.csv, with or
// without the wordBook_ prefix.
type FileSource struct {
	dir    string
	config ImportConfig
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, config: DefaultImportConfig()}
}

// WordBook reads the entries of the named book
func (s *FileSource) WordBook(ctx context.Context, name string) ([]models.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.find(name)
	if err != nil {
		return nil, err
	}

	config := s.config
	config.FilePath = path
	entries, result, err := ReadBook(config)
	if err != nil {
		return nil, fmt.Errorf("read word book (name: %s): %w", name, err)
	}
	if len(result.Errors) > 0 {
		zap.S().Warnw("word book has rejected rows",
			"book", name, "skipped", result.Skipped, "errors", result.Errors)
	}

	return entries, nil
}

// WordBooks lists the book names found in the directory
func (s *FileSource) WordBooks(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list word books (dir: %s): %w", s.dir, err)
	}

	names := lo.FilterMap(files, func(f os.DirEntry, _ int) (string, bool) {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || !lo.Contains(bookExtensions, ext) {
			return "", false
		}
		return strings.TrimPrefix(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())), bookFilePrefix), true
	})
	names = lo.Uniq(names)
	sort.Strings(names)

	return names, nil
}

func (s *FileSource) find(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("find word book (name: %q): invalid name", name)
	}

	for _, base := range []string{bookFilePrefix + name, name} {
		for _, ext := range bookExtensions {
			path := filepath.Join(s.dir, base+ext)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("find word book (name: %s, dir: %s): %w", name, s.dir, os.ErrNotExist)
}
