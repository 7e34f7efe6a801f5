// Package testutil writes small source-dataset fixtures (meshes, material
// libraries, text tables) and converter outputs for package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Mesh is a minimal polygon mesh with one material per face.
type Mesh struct {
	Vertices  [][3]float64
	Faces     [][]int // 0-based vertex indices
	Materials []string
	FaceMat   []int // material index per face, -1 for none
}

// Quad returns a single textured quad using the given material names, one
// triangle per material.
func Quad(materials ...string) Mesh {
	m := Mesh{
		Vertices: [][3]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Faces:    [][]int{{0, 1, 2}, {0, 2, 3}},
	}
	m.Materials = materials
	for i := range m.Faces {
		if len(materials) == 0 {
			m.FaceMat = append(m.FaceMat, -1)
			continue
		}
		m.FaceMat = append(m.FaceMat, i%len(materials))
	}
	return m
}

// WriteOBJ writes the Wavefront OBJ form of m to w, referencing mtlName as its
// material library.
func WriteOBJ(w io.Writer, m Mesh, mtlName string) error {
	fmt.Fprintln(w, "# scenedb-tools fixture")
	if mtlName != "" {
		fmt.Fprintf(w, "mtllib %s\n", mtlName)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(w, "v %f %f %f\n", v[0], v[1], v[2])
	}

	var faces strings.Builder
	for i, face := range m.Faces {
		if i < len(m.FaceMat) && m.FaceMat[i] >= 0 {
			fmt.Fprintf(&faces, "usemtl %s\n", SanitizeName(m.Materials[m.FaceMat[i]]))
		}
		faces.WriteString("f")
		for _, idx := range face {
			// OBJ indices are 1-based
			fmt.Fprintf(&faces, " %d", idx+1)
		}
		faces.WriteString("\n")
	}
	_, err := fmt.Fprint(w, faces.String())
	return err
}

// WriteMTL writes a material library declaring each material with a flat
// diffuse colour.
func WriteMTL(w io.Writer, materials []string) error {
	fmt.Fprintln(w, "# scenedb-tools fixture")
	for i, name := range materials {
		if name == "" {
			name = fmt.Sprintf("Material_%d", i)
		}
		fmt.Fprintf(w, "\nnewmtl %s\n", SanitizeName(name))
		fmt.Fprintf(w, "Kd %f %f %f\n", 0.8, 0.8, 0.8)
	}
	return nil
}

// WriteModel writes <dir>/<id>.obj and <dir>/<id>.mtl. When padTo is larger
// than the natural OBJ size, the OBJ is extended with zero bytes so size
// based filters can be exercised without real meshes.
func WriteModel(dir, id string, m Mesh, padTo int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	objPath := filepath.Join(dir, id+".obj")
	f, err := os.Create(objPath)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, m, id+".mtl"); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if padTo > 0 {
		info, err := os.Stat(objPath)
		if err != nil {
			return err
		}
		if info.Size() < padTo {
			// Truncate extends with zero bytes; a sparse file keeps large
			// fixtures cheap.
			if err := os.Truncate(objPath, padTo); err != nil {
				return err
			}
		}
	}

	mf, err := os.Create(filepath.Join(dir, id+".mtl"))
	if err != nil {
		return err
	}
	defer mf.Close()
	return WriteMTL(mf, m.Materials)
}

// WriteDescriptor writes a converter-style descriptor JSON with n materials
// keyed by name.
func WriteDescriptor(path string, n int) error {
	mats := make(map[string]map[string]any, n)
	for i := 0; i < n; i++ {
		mats[fmt.Sprintf("Material_%d", i)] = map[string]any{"Kd": []float64{0.8, 0.8, 0.8}}
	}
	data, err := json.Marshal(map[string]any{
		"materials": mats,
		"urls":      map[string]any{},
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SanitizeName maps every rune outside [A-Za-z0-9_-] to '_'.
func SanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, s)
}
