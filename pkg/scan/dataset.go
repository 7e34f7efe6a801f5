// Package scan enumerates the source dataset and decides which assets still
// need converting.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scenedb-tools/pkg/layout"
)

// Dataset is the third-party scene database on disk:
//
//	<root>/models/<id>.obj, <id>.mtl
//	<root>/models/textures/*
//	<root>/fields/names.txt, tags.txt
type Dataset struct {
	Root string
}

func NewDataset(root string) Dataset {
	root = strings.TrimRight(root, "/")
	if root == "" {
		root = "/"
	}
	return Dataset{Root: root}
}

func (d Dataset) ModelsDir() string        { return filepath.Join(d.Root, "models") }
func (d Dataset) TexturesDir() string      { return filepath.Join(d.Root, "models", "textures") }
func (d Dataset) NamesTable() string       { return filepath.Join(d.Root, "fields", "names.txt") }
func (d Dataset) TagsTable() string        { return filepath.Join(d.Root, "fields", "tags.txt") }
func (d Dataset) OBJPath(id string) string { return filepath.Join(d.ModelsDir(), id+".obj") }
func (d Dataset) MTLPath(id string) string { return filepath.Join(d.ModelsDir(), id+".mtl") }

// ListAssetIDs returns the ids of every .obj file in the models directory,
// sorted.
func (d Dataset) ListAssetIDs() ([]string, error) {
	return idsWithExt(d.ModelsDir(), ".obj")
}

// Oversized returns the ids whose source mesh is at least threshold bytes, in
// input order.
func (d Dataset) Oversized(ids []string, threshold int64) ([]string, error) {
	var out []string
	for _, id := range ids {
		info, err := os.Stat(d.OBJPath(id))
		if err != nil {
			return nil, fmt.Errorf("stat source mesh %s: %w", id, err)
		}
		if info.Size() >= threshold {
			out = append(out, id)
		}
	}
	return out, nil
}

// Converted returns the ids that already have a model descriptor in tree.
func Converted(tree layout.Tree) ([]string, error) {
	return idsWithExt(tree.ModelDir, layout.ModelExt)
}

// Set is a string set keyed by asset id.
type Set map[string]struct{}

func NewSet(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Pending keeps the ids of ids that are neither converted nor oversized,
// preserving order.
func Pending(ids []string, converted, oversized Set) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if converted.Has(id) || oversized.Has(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func idsWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
