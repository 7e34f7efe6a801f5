// Package metadata turns the dataset's names and tags tables into one JSON
// record per asset.
package metadata

import "errors"

// ErrMalformedLine reports a table line that cannot be interpreted.
var ErrMalformedLine = errors.New("malformed table line")

// Record is the persisted metadata of one asset.
type Record struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// Result summarises one Merge call.
type Result struct {
	Records int
	Written int
	// Oversized counts records withheld because their asset is oversized.
	Oversized int
	// Orphans lists tag-table ids with no names entry; their tags are dropped.
	Orphans []string
}
