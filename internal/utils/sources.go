package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/routelens/internal/errors"
)

// DefaultExtensions are the source file extensions analysed when none are configured
var DefaultExtensions = []string{".cs"}

// skippedDirs are build output and tooling directories never worth scanning
var skippedDirs = map[string]bool{
	".git":         true,
	".vs":          true,
	"bin":          true,
	"obj":          true,
	"node_modules": true,
}

// SourceFinder resolves command line patterns to source files
type SourceFinder struct {
	extensions map[string]bool
}

// NewSourceFinder creates a finder for the given extensions
func NewSourceFinder(extensions ...string) *SourceFinder {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	f := &SourceFinder{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[strings.ToLower(ext)] = true
	}
	return f
}

// Find expands patterns into a sorted, duplicate-free list of files.
// Supports Go-style patterns:
//
//	./...          every matching file below the current directory
//	./src/...      every matching file below src
//	./src          matching files directly in src
//	Program.cs     the file itself, whatever its extension
func (f *SourceFinder) Find(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		recursive := false
		root := pattern
		if pattern == "..." || strings.HasSuffix(pattern, "/...") {
			recursive = true
			root = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if root == "" {
				root = "."
			}
		}
		root = filepath.Clean(root)

		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		if err := f.walk(root, recursive, add); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (f *SourceFinder) walk(root string, recursive bool, add func(string)) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if f.extensions[strings.ToLower(filepath.Ext(path))] {
			add(path)
		}
		return nil
	})
	if err != nil {
		return errors.WrapFileSystemError("scan", root, err)
	}
	return nil
}

// ReadSource reads one source file
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", errors.WrapFileSystemError("read", path, err)
	}
	return string(data), nil
}
