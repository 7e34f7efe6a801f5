// Package layout describes the converted asset tree consumed by the viewer and
// keeps it consistent: it creates the directories and rolls back a single
// asset's artifacts after a failed conversion.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Subdirectory names of the output tree.
const (
	ModelDirName    = "model"
	GeometryDirName = "geometry"
	TextureDirName  = "texture"
	MetadataDirName = "metadata"
	ImageDirName    = "image"
)

// Artifact extensions.
const (
	ModelExt    = ".json"
	MetadataExt = ".json"
	GeometryExt = ".utf8"
	ImageExt    = ".jpg"
)

// Tree is the output directory tree rooted at Root.
type Tree struct {
	Root        string
	ModelDir    string
	GeometryDir string
	TextureDir  string
	MetadataDir string
	ImageDir    string
}

func New(root string) Tree {
	return Tree{
		Root:        root,
		ModelDir:    filepath.Join(root, ModelDirName),
		GeometryDir: filepath.Join(root, GeometryDirName),
		TextureDir:  filepath.Join(root, TextureDirName),
		MetadataDir: filepath.Join(root, MetadataDirName),
		ImageDir:    filepath.Join(root, ImageDirName),
	}
}

func (t Tree) ModelPath(id string) string    { return filepath.Join(t.ModelDir, id+ModelExt) }
func (t Tree) MetadataPath(id string) string { return filepath.Join(t.MetadataDir, id+MetadataExt) }
func (t Tree) GeometryPath(id string) string { return filepath.Join(t.GeometryDir, id+GeometryExt) }
func (t Tree) ImagePath(id string) string    { return filepath.Join(t.ImageDir, id+ImageExt) }
func (t Tree) TexturePath(name string) string {
	return filepath.Join(t.TextureDir, name)
}

// Dirs lists the root followed by the five subdirectories.
func (t Tree) Dirs() []string {
	return []string{t.Root, t.ModelDir, t.GeometryDir, t.TextureDir, t.MetadataDir, t.ImageDir}
}

// EnsureTree creates any missing directory of the tree.
func (t Tree) EnsureTree() error {
	for _, dir := range t.Dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// AssetPaths returns the four per-asset artifacts: model descriptor, metadata
// record, geometry blob and preview image.
func (t Tree) AssetPaths(id string) []string {
	return []string{t.ModelPath(id), t.MetadataPath(id), t.GeometryPath(id), t.ImagePath(id)}
}

// DeleteAsset removes every artifact of id, whether file or directory.
// Missing artifacts are not an error.
func (t Tree) DeleteAsset(id string) error {
	for _, p := range t.AssetPaths(id) {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}
