package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Dataset builds a source dataset tree under a test temp directory.
type Dataset struct {
	t    testing.TB
	Root string
}

func NewDataset(t testing.TB) *Dataset {
	t.Helper()
	root := filepath.Join(t.TempDir(), "scenedb")
	for _, dir := range []string{"models/textures", "fields"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("create dataset dir: %v", err)
		}
	}
	d := &Dataset{t: t, Root: root}
	d.Names()
	d.Tags()
	return d
}

// Model adds <id>.obj/.mtl with the given materials.
func (d *Dataset) Model(id string, materials ...string) *Dataset {
	d.t.Helper()
	if err := WriteModel(filepath.Join(d.Root, "models"), id, Quad(materials...), 0); err != nil {
		d.t.Fatalf("write model %s: %v", id, err)
	}
	return d
}

// LargeModel adds a model whose OBJ file is exactly size bytes.
func (d *Dataset) LargeModel(id string, size int64) *Dataset {
	d.t.Helper()
	if err := WriteModel(filepath.Join(d.Root, "models"), id, Quad("m"), size); err != nil {
		d.t.Fatalf("write model %s: %v", id, err)
	}
	return d
}

// Texture adds a texture file with the given content.
func (d *Dataset) Texture(name, content string) *Dataset {
	d.t.Helper()
	d.write(filepath.Join("models", "textures", name), content)
	return d
}

// Names replaces the names table with the given lines.
func (d *Dataset) Names(lines ...string) *Dataset {
	d.t.Helper()
	d.write(filepath.Join("fields", "names.txt"), joinLines(lines))
	return d
}

// Tags replaces the tags table with the given lines.
func (d *Dataset) Tags(lines ...string) *Dataset {
	d.t.Helper()
	d.write(filepath.Join("fields", "tags.txt"), joinLines(lines))
	return d
}

func (d *Dataset) write(rel, content string) {
	if err := os.WriteFile(filepath.Join(d.Root, rel), []byte(content), 0o644); err != nil {
		d.t.Fatalf("write %s: %v", rel, err)
	}
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
