package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// DiskStore keeps sketches as files in one directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, hnerr.StoreFailed("create", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name, code string) (string, error) {
	safe, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, safe), []byte(code), 0o644); err != nil {
		return "", hnerr.StoreFailed("save", safe, err)
	}
	logging.Global().WithPrefix("filestore").Info("user file saved", logging.Path(safe), logging.Count(len(code)))
	return safe, nil
}

// List returns every sketch sorted by name.
func (s *DiskStore) List(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, hnerr.StoreFailed("list", s.dir, err)
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, hnerr.StoreFailed("read", e.Name(), err)
		}
		files = append(files, File{Name: e.Name(), Code: string(data)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *DiskStore) Load(ctx context.Context, name string) (string, error) {
	safe, err := NormalizeName(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, safe))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", hnerr.StoreFailed("load", safe, err)
	}
	return string(data), nil
}
