package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"genai/internal/common/fsutil"
	"genai/pkg/types"
)

// ErrNoModel is returned when a path does not name a usable model artifact.
var ErrNoModel = errors.New("no model artifact")

// extensions maps backend kinds to the file extensions they load.
var extensions = map[string][]string{
	"bigram": {".json"},
	"llama":  {".gguf", ".bin"},
	"onnx":   {".onnx"},
}

// ExtensionsFor returns the model file extensions accepted by a backend kind.
func ExtensionsFor(backend string) []string {
	return extensions[strings.ToLower(backend)]
}

// Scanner finds model files by extension.
type Scanner struct {
	exts []string
}

// NewScanner returns a Scanner matching the given extensions case-insensitively.
func NewScanner(exts ...string) *Scanner {
	s := &Scanner{}
	for _, e := range exts {
		s.exts = append(s.exts, strings.ToLower(e))
	}
	return s
}

func (s *Scanner) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.exts {
		if ext == e {
			return true
		}
	}
	return false
}

// Scan lists matching files directly under dir, sorted by name.
func (s *Scanner) Scan(dir string) ([]types.ModelFile, error) {
	abs, err := fsutil.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []types.ModelFile
	for _, e := range entries {
		if e.IsDir() || !s.matches(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, types.ModelFile{Name: e.Name(), Path: filepath.Join(abs, e.Name()), Size: info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Resolve turns path into a single model file. A file path is returned as is
// (absolute); a directory must contain exactly one matching file.
func (s *Scanner) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty model path", ErrNoModel)
	}
	abs, err := fsutil.Abs(path)
	if err != nil {
		return "", err
	}
	if !fsutil.PathExists(abs) {
		return "", fmt.Errorf("%w: %s does not exist", ErrNoModel, abs)
	}
	if !fsutil.IsDir(abs) {
		return abs, nil
	}
	files, err := s.Scan(abs)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("%w: no %s file in %s", ErrNoModel, strings.Join(s.exts, "/"), abs)
	case 1:
		return files[0].Path, nil
	default:
		return "", fmt.Errorf("%w: %d candidate files in %s, name one explicitly", ErrNoModel, len(files), abs)
	}
}
