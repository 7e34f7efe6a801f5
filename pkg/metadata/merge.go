package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"

	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/scan"
)

// ReadNames is the first phase of the join: one record per names-table id.
// Later lines for the same id replace earlier ones.
func ReadNames(r *Reader) (map[string]*Record, error) {
	records := make(map[string]*Record)
	for {
		fields, err := r.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, r.malformed("expected id|name")
		}
		id := strings.TrimSpace(fields[0])
		if id == "" {
			return nil, r.malformed("empty id")
		}
		records[id] = &Record{ID: id, Name: strings.TrimSpace(fields[1]), Tags: []string{}}
	}
}

// FoldTags is the second phase: tags are attached to records that already
// exist. Ids missing from records are returned sorted and otherwise ignored.
func FoldTags(r *Reader, records map[string]*Record) ([]string, error) {
	orphans := make(map[string]struct{})
	for {
		fields, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		id := strings.TrimSpace(fields[0])
		rec, ok := records[id]
		if !ok {
			orphans[id] = struct{}{}
			continue
		}
		tags := append([]string{}, fields[1:]...)
		if n := len(tags); n > 0 {
			tags[n-1] = strings.TrimRightFunc(tags[n-1], unicode.IsSpace)
		}
		rec.Tags = tags
	}
	out := make([]string, 0, len(orphans))
	for id := range orphans {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Merger joins the two tables of a dataset and writes the records into the
// metadata directory of a tree.
type Merger struct {
	NamesPath string
	TagsPath  string
	Encoding  encoding.Encoding
	Tree      layout.Tree
	Logger    zerolog.Logger
}

func NewMerger(ds scan.Dataset, tree layout.Tree, enc encoding.Encoding, logger zerolog.Logger) *Merger {
	return &Merger{
		NamesPath: ds.NamesTable(),
		TagsPath:  ds.TagsTable(),
		Encoding:  enc,
		Tree:      tree,
		Logger:    logger,
	}
}

// Load runs both join phases and returns the records keyed by id.
func (m *Merger) Load() (map[string]*Record, []string, error) {
	nf, err := os.Open(m.NamesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open names table: %w", err)
	}
	defer nf.Close()
	records, err := ReadNames(NewReader(nf, "names", m.Encoding))
	if err != nil {
		return nil, nil, err
	}

	tf, err := os.Open(m.TagsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open tags table: %w", err)
	}
	defer tf.Close()
	orphans, err := FoldTags(NewReader(tf, "tags", m.Encoding), records)
	if err != nil {
		return nil, nil, err
	}
	return records, orphans, nil
}

// Merge writes <metadata>/<id>.json for every record whose asset is not
// oversized.
func (m *Merger) Merge(oversized scan.Set) (Result, error) {
	records, orphans, err := m.Load()
	if err != nil {
		return Result{}, err
	}
	res := Result{Records: len(records), Orphans: orphans}
	if len(orphans) > 0 {
		m.Logger.Warn().Int("count", len(orphans)).Msg("tags table references ids without a name, tags dropped")
		for _, id := range orphans {
			m.Logger.Debug().Str("id", id).Msg("orphan tags entry")
		}
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if oversized.Has(id) {
			res.Oversized++
			continue
		}
		if err := WriteRecord(m.Tree.MetadataPath(id), records[id]); err != nil {
			return res, err
		}
		res.Written++
	}
	return res, nil
}

// WriteRecord serialises rec to path.
func WriteRecord(path string, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", rec.ID, err)
	}
	return nil
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return &rec, nil
}
