package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cyra/ngxlog/internal/parser"
)

// Input is one log file to process.
type Input struct {
	Kind parser.Kind
	Path string
}

// Discover resolves the fixed file names of every kind inside dir, in parser.Kinds order.
// Absent files are not an error; only exact names are considered.
func Discover(dir string) ([]Input, error) {
	var inputs []Input
	for _, kind := range parser.Kinds {
		path := filepath.Join(dir, kind.FileName())
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		inputs = append(inputs, Input{Kind: kind, Path: path})
	}
	return inputs, nil
}
