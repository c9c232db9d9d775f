package ingestion

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/verbata/core"
)

// utf8BOM is stripped from file contents before chunking.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DiscoverFiles walks root recursively and returns the paths of all files
// with a supported extension, sorted lexicographically. If root is itself a
// supported file, it is returned alone.
func DiscoverFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if _, ok := typeForPath(root); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, root)
		}
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := typeForPath(path); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}

// ReadDocument reads a supported file and returns its text ready for
// chunking, along with the detected file type and on-disk size. The UTF-8
// BOM is stripped and invalid byte sequences are replaced so downstream
// processing always sees valid UTF-8.
func ReadDocument(path string, maxSize int64) (string, core.FileType, int64, error) {
	fileType, ok := typeForPath(path)
	if !ok {
		return "", 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, 0, err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", 0, 0, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, 0, err
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ToValidUTF8(string(data), "�")

	return text, fileType, info.Size(), nil
}

// typeForPath returns the file type for a path's extension.
func typeForPath(path string) (core.FileType, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	fileType, ok := core.SupportedExtensions[ext]
	return fileType, ok
}
