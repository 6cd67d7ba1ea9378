// Package testlist resolves command-line patterns to concrete test files.
package testlist

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// testFileSuffixes are the extensions the app under test recognizes as
// script test files when a directory is given.
var testFileSuffixes = []string{".test.js", ".test.ts", ".test.mjs"}

// ResolvePatterns expands positional arguments into a deduplicated, sorted
// list of test files. A pattern may be a literal file path, a directory
// (searched recursively for test files), or a glob. A pattern that matches
// nothing simply contributes nothing; zero total matches is not an error.
func ResolvePatterns(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, pattern := range patterns {
		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			found, err := collectDir(pattern)
			if err != nil {
				return nil, fmt.Errorf("failed to search directory %s: %w", pattern, err)
			}
			for _, f := range found {
				add(f)
			}
		case err == nil:
			// Explicitly named files are taken as-is, test suffix or not.
			add(pattern)
		default:
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, match := range matches {
				matchInfo, err := os.Stat(match)
				if err != nil {
					continue
				}
				if matchInfo.IsDir() {
					found, err := collectDir(match)
					if err != nil {
						return nil, fmt.Errorf("failed to search directory %s: %w", match, err)
					}
					for _, f := range found {
						add(f)
					}
				} else {
					add(match)
				}
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// collectDir walks a directory tree collecting test files.
func collectDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsTestFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// IsTestFile reports whether the file name carries a recognized test suffix.
func IsTestFile(path string) bool {
	name := filepath.Base(path)
	for _, suffix := range testFileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
