package generator

import (
	"fmt"
	"path/filepath"

	"github.com/erraggy/apicatalog/internal/fileutil"
)

// WriteFile writes the generated file to path. An empty path or a directory
// path ending in a separator uses the suggested file name.
func (f *GeneratedFile) WriteFile(path string) error {
	if path == "" || path[len(path)-1] == filepath.Separator {
		path = filepath.Join(path, filepath.Base(f.Name))
	}
	if err := fileutil.WriteAtomic(path, f.Content, fileutil.ReadableByAll); err != nil {
		return fmt.Errorf("generator: write %s: %w", f.Name, err)
	}
	return nil
}
