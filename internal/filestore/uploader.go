package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/logging"
)

// Uploader drops sketches into the directory an external flashing daemon
// watches. Each upload replaces the previous file and bumps its mtime.
type Uploader struct {
	dir string
	now func() time.Time
}

// NewUploader creates dir if needed.
func NewUploader(dir string) (*Uploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, hnerr.StoreFailed("create", dir, err)
	}
	return &Uploader{dir: dir, now: time.Now}, nil
}

// Upload writes code to name and returns the destination path.
func (u *Uploader) Upload(ctx context.Context, name, code string) (string, error) {
	safe, err := validateName(name)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(u.dir, safe)

	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", hnerr.StoreFailed("replace", safe, err)
	}
	if err := os.WriteFile(dest, []byte(code), 0o644); err != nil {
		return "", hnerr.StoreFailed("upload", safe, err)
	}
	now := u.now()
	if err := os.Chtimes(dest, now, now); err != nil {
		return "", hnerr.StoreFailed("touch", safe, err)
	}

	logging.Global().WithPrefix("filestore").Info("file uploaded", logging.Path(dest))
	return dest, nil
}
