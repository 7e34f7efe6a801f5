// Package store abstracts where the converted asset tree lives, so the same
// artifacts can be served from local disk or an S3-compatible bucket.
package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"time"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// ErrInvalidName is returned for names that are not clean, relative,
// slash-separated paths.
var ErrInvalidName = errors.New("invalid object name")

// Info describes a stored object.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store holds immutable artifacts keyed by slash-separated names such as
// "model/chair.json".
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes name. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	Stat(ctx context.Context, name string) (Info, error)
}

// CheckName validates an object name.
func CheckName(name string) error {
	if name == "." || !fs.ValidPath(name) {
		return ErrInvalidName
	}
	return nil
}

// ContentType maps artifact extensions to the types the viewer expects.
func ContentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".tga":
		return "image/x-tga"
	}
	return "application/octet-stream"
}
