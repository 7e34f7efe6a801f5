// Package compress drives the external geometry converter (obj2utf8) for one
// asset at a time and keeps the output tree consistent when it fails.
package compress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/scan"
)

// State is the progress of one Compress call.
type State int

const (
	Start State = iota
	Staged
	Converted
	Relocated
	FailedCleanup
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Staged:
		return "staged"
	case Converted:
		return "converted"
	case Relocated:
		return "relocated"
	case FailedCleanup:
		return "failed-cleanup"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Compressor struct {
	Dataset scan.Dataset
	Tree    layout.Tree
	// Dir is the staging directory the converter runs in. Running two
	// compressors on the same Dir at once is not supported.
	Dir     string
	Command string
	Args    []string
	Logger  zerolog.Logger
}

func New(ds scan.Dataset, tree layout.Tree, dir, command string, args []string, logger zerolog.Logger) *Compressor {
	return &Compressor{
		Dataset: ds,
		Tree:    tree,
		Dir:     dir,
		Command: command,
		Args:    args,
		Logger:  logger,
	}
}

// Compress converts the source mesh of id. On success the geometry blob is in
// the tree's geometry dir and the descriptor in its model dir. A converter
// failure rolls back every artifact of id and returns a *ConverterError;
// other errors (staging, relocation) are returned as is.
func (c *Compressor) Compress(ctx context.Context, id string) (State, error) {
	command, err := c.resolveCommand()
	if err != nil {
		return Start, err
	}

	sess, err := openSession(c.Dir, id, c.Dataset.OBJPath(id), c.Dataset.MTLPath(id), c.Logger)
	if err != nil {
		return Start, err
	}
	defer sess.Close()
	c.Logger.Debug().Str("id", id).Stringer("state", Staged).Msg("inputs staged")

	runErr := sess.run(ctx, command, c.Args)
	if err := sess.Close(); err != nil {
		c.Logger.Warn().Err(err).Str("id", id).Msg("staging cleanup incomplete")
	}

	if runErr != nil {
		c.Logger.Error().Err(runErr).Str("id", id).Msg("obj2utf8 died")
		cerr := &ConverterError{ID: id, ExitCode: exitCode(runErr), Diagnostics: sess.diagnostics, cause: runErr}
		if err := sess.discardOutputs(); err != nil {
			return FailedCleanup, errors.Join(cerr, err)
		}
		if err := c.Tree.DeleteAsset(id); err != nil {
			return FailedCleanup, errors.Join(cerr, err)
		}
		return FailedCleanup, cerr
	}

	if err := moveFile(sess.geometryOut(), c.Tree.GeometryPath(id)); err != nil {
		return Converted, fmt.Errorf("relocate geometry %s: %w", id, err)
	}
	if err := moveFile(sess.descriptorOut(), c.Tree.ModelPath(id)); err != nil {
		return Converted, fmt.Errorf("relocate descriptor %s: %w", id, err)
	}
	return Relocated, nil
}

// resolveCommand prefers a converter binary inside Dir, then PATH.
func (c *Compressor) resolveCommand() (string, error) {
	if !strings.ContainsRune(c.Command, filepath.Separator) {
		local := filepath.Join(c.Dir, c.Command)
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			return filepath.Abs(local)
		}
		path, err := exec.LookPath(c.Command)
		if err != nil {
			return "", fmt.Errorf("find converter %q: %w", c.Command, err)
		}
		return path, nil
	}
	return filepath.Abs(c.Command)
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
