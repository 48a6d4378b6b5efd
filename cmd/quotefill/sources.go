package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-quotefill/pkg/extraction"
)

// textExtensions are read inline into the prompt; anything else is uploaded
// to the oracle as a file.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".csv":  {},
	".json": {},
	".eml":  {},
}

func loadSources(paths []string) ([]extraction.Source, error) {
	sources := make([]extraction.Source, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory", path)
		}
		source := extraction.Source{Name: filepath.Base(path)}
		if _, ok := textExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", path, err)
			}
			source.Text = string(data)
		} else {
			source.Path = path
		}
		sources = append(sources, source)
	}
	return sources, nil
}
