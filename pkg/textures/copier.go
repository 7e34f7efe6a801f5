// Package textures mirrors the dataset's texture directory into the output
// tree without ever overwriting what is already there.
package textures

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Stats counts the outcome of one Copy call.
type Stats struct {
	Copied  int
	Skipped int
}

type Copier struct {
	Src    string
	Dst    string
	Logger zerolog.Logger
}

func NewCopier(src, dst string, logger zerolog.Logger) *Copier {
	return &Copier{Src: src, Dst: dst, Logger: logger}
}

// Copy copies every regular file of Src to Dst unless a file of the same name
// already exists in Dst. Stale destination files are left alone.
func (c *Copier) Copy() (Stats, error) {
	var st Stats
	entries, err := os.ReadDir(c.Src)
	if err != nil {
		return st, fmt.Errorf("list textures: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		dst := filepath.Join(c.Dst, e.Name())
		if _, err := os.Lstat(dst); err == nil {
			st.Skipped++
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return st, fmt.Errorf("stat %s: %w", dst, err)
		}
		if err := CopyFile(filepath.Join(c.Src, e.Name()), dst); err != nil {
			return st, err
		}
		st.Copied++
		c.Logger.Debug().Str("texture", e.Name()).Msg("copied texture")
	}
	return st, nil
}

// CopyFile copies src to dst through a temporary sibling so dst is never
// observed half written.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", dst, err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}
