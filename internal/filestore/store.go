// Package filestore persists user sketches by name and hands finished
// sketches to the uploader drop directory.
package filestore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
)

// Extension is appended to names that lack it.
const Extension = ".ino"

var (
	// ErrInvalidName rejects empty names, path separators and "..".
	ErrInvalidName = &hnerr.Error{Category: hnerr.CategoryStore, Code: "invalid_name", Message: "invalid file name"}
	// ErrNotFound is returned by Load for unknown names.
	ErrNotFound = &hnerr.Error{Category: hnerr.CategoryStore, Code: "not_found", Message: "file not found"}
)

// File is a stored sketch.
type File struct {
	Name string `json:"filename"`
	Code string `json:"code"`
}

// Store saves, lists and loads sketches by name.
type Store interface {
	// Save writes code under name and returns the normalized name.
	Save(ctx context.Context, name, code string) (string, error)
	List(ctx context.Context) ([]File, error)
	Load(ctx context.Context, name string) (string, error)
}

// New builds the configured backend.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(cfg.S3)
	case "", "disk":
		return NewDiskStore(cfg.UserDir)
	default:
		return nil, hnerr.ConfigInvalid(fmt.Sprintf("unknown store backend %q", cfg.Backend))
	}
}

// NormalizeName validates name and appends the sketch extension.
func NormalizeName(name string) (string, error) {
	base, err := validateName(name)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(base, Extension) {
		base += Extension
	}
	return base, nil
}

// validateName accepts a single path element.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		path.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}
