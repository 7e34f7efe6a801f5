// Package stats aggregates statistics over the converted model descriptors.
package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoMaterials is wrapped by ParseError when a descriptor has no usable
// materials collection.
var ErrNoMaterials = errors.New("descriptor has no materials collection")

// ParseError aborts an aggregation: one descriptor could not be interpreted.
type ParseError struct {
	Path  string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse JSON from file %s: %v", e.Path, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Bucket is one histogram entry.
type Bucket struct {
	Materials   int
	Occurrences int
	// Exemplar is the lexicographically smallest id in the bucket.
	Exemplar string
}

// Histogram counts descriptors by number of materials.
type Histogram struct {
	buckets map[int]*Bucket
	total   int
}

func NewHistogram() *Histogram {
	return &Histogram{buckets: make(map[int]*Bucket)}
}

// Add records one descriptor of id with n materials.
func (h *Histogram) Add(id string, n int) {
	h.total++
	b, ok := h.buckets[n]
	if !ok {
		h.buckets[n] = &Bucket{Materials: n, Occurrences: 1, Exemplar: id}
		return
	}
	b.Occurrences++
	if id < b.Exemplar {
		b.Exemplar = id
	}
}

// Total is the number of descriptors added.
func (h *Histogram) Total() int { return h.total }

// Buckets returns the buckets sorted by material count.
func (h *Histogram) Buckets() []Bucket {
	out := make([]Bucket, 0, len(h.buckets))
	for _, b := range h.buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Materials < out[j].Materials })
	return out
}

// ProgressFunc is called after each descriptor is aggregated.
type ProgressFunc func(done, total int)

// Aggregate builds the materials histogram of every *.json descriptor in dir.
// The first descriptor that is not valid JSON, or lacks materials, aborts the
// whole aggregation with a *ParseError.
func Aggregate(dir string, progress ProgressFunc) (*Histogram, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list descriptors: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}

	h := NewHistogram()
	for i, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read descriptor: %w", err)
		}
		n, err := CountMaterials(data)
		if err != nil {
			return nil, &ParseError{Path: path, cause: err}
		}
		h.Add(strings.TrimSuffix(name, ".json"), n)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return h, nil
}

// CountMaterials returns the number of entries of the descriptor's top-level
// "materials" collection, which may be an object or an array.
func CountMaterials(data []byte) (int, error) {
	var desc struct {
		Materials json.RawMessage `json:"materials"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return 0, err
	}
	raw := bytes.TrimSpace(desc.Materials)
	if len(raw) == 0 {
		return 0, ErrNoMaterials
	}
	switch raw[0] {
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return 0, err
		}
		return len(m), nil
	case '[':
		var a []json.RawMessage
		if err := json.Unmarshal(raw, &a); err != nil {
			return 0, err
		}
		return len(a), nil
	}
	return 0, fmt.Errorf("%w: materials is %s", ErrNoMaterials, string(raw))
}
