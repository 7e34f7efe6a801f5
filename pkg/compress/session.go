package compress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// session is the converter's staging area for one asset: the staged mesh and
// material library plus the file capturing the converter's stderr. Close
// releases all of it on every exit path.
type session struct {
	dir    string
	id     string
	logger zerolog.Logger

	staged []string
	errf   *os.File
	closed bool

	diagnostics string
}

// openSession stages obj and mtl into dir as <id>.obj and <id>.mtl. On error
// anything already staged is removed again.
func openSession(dir, id, obj, mtl string, logger zerolog.Logger) (s *session, err error) {
	s = &session{dir: dir, id: id, logger: logger}
	defer func() {
		if err != nil {
			s.Close()
			s = nil
		}
	}()

	for _, src := range []string{obj, mtl} {
		dst := filepath.Join(dir, id+filepath.Ext(src))
		if err := copyFile(src, dst); err != nil {
			return s, fmt.Errorf("stage %s: %w", filepath.Base(src), err)
		}
		s.staged = append(s.staged, dst)
	}

	s.errf, err = os.CreateTemp("", "obj2utf8-*.err")
	if err != nil {
		return s, fmt.Errorf("create diagnostics file: %w", err)
	}
	return s, nil
}

// Output names the converter is asked to produce inside the staging dir.
func (s *session) geometryOut() string   { return filepath.Join(s.dir, s.id+".utf8") }
func (s *session) descriptorOut() string { return filepath.Join(s.dir, s.id+".json") }

// run invokes the converter with the staging dir as its working directory.
func (s *session) run(ctx context.Context, command string, prefix []string) error {
	args := append(append([]string{}, prefix...), s.id+".obj", s.id+".utf8", s.id+".json")
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = s.dir
	cmd.Stderr = s.errf
	if err := cmd.Run(); err != nil {
		return err
	}
	for _, p := range []string{s.geometryOut(), s.descriptorOut()} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("converter exited cleanly but produced no %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

// discardOutputs removes whatever the converter left behind for this asset.
func (s *session) discardOutputs() error {
	var errs []error
	for _, p := range []string{s.geometryOut(), s.descriptorOut()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close relays the captured diagnostics to the logger, then deletes the
// diagnostics file and the staged inputs. It is safe to call more than once.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.errf != nil {
		if _, err := s.errf.Seek(0, io.SeekStart); err == nil {
			data, _ := io.ReadAll(s.errf)
			s.diagnostics = strings.TrimSpace(string(data))
		}
		if s.diagnostics != "" {
			s.logger.Info().Str("id", s.id).Msg(s.diagnostics)
		}
		errs = append(errs, s.errf.Close())
		if err := os.Remove(s.errf.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	for _, p := range s.staged {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// moveFile renames src to dst, copying across filesystems when needed.
func moveFile(src, dst string) error {
	rerr := os.Rename(src, dst)
	if rerr == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return errors.Join(rerr, err)
	}
	return os.Remove(src)
}
