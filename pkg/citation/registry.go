// Package citation holds the registry of source documents that workflow
// content cites.
package citation

import (
	"strings"

	"github.com/vanderheijden86/permitflow/pkg/model"
)

// Registry maps a source key to its CitationRecord. It is built once and never
// mutated, so it is safe to share between goroutines.
type Registry struct {
	records map[string]model.CitationRecord
	order   []string
}

// NewRegistry builds a registry from records in declaration order. A record
// with an empty ID is skipped; a repeated ID keeps the first occurrence.
func NewRegistry(records []model.CitationRecord) *Registry {
	r := &Registry{
		records: make(map[string]model.CitationRecord, len(records)),
		order:   make([]string, 0, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, dup := r.records[rec.ID]; dup {
			continue
		}
		r.records[rec.ID] = rec
		r.order = append(r.order, rec.ID)
	}
	return r
}

// Resolve looks up a source key. A record without APA text or URL counts as a
// miss so callers never show an empty popover.
func (r *Registry) Resolve(key string) (model.CitationRecord, bool) {
	if r == nil {
		return model.CitationRecord{}, false
	}
	rec, ok := r.records[key]
	if !ok {
		return model.CitationRecord{}, false
	}
	if strings.TrimSpace(rec.APA) == "" || strings.TrimSpace(rec.URL) == "" {
		return model.CitationRecord{}, false
	}
	return rec, true
}

// ResolveCitation resolves a citation reference; nil is a miss.
func (r *Registry) ResolveCitation(c *model.Citation) (model.CitationRecord, bool) {
	if c == nil {
		return model.CitationRecord{}, false
	}
	return r.Resolve(c.Source)
}

// All returns every record in declaration order.
func (r *Registry) All() []model.CitationRecord {
	if r == nil {
		return nil
	}
	out := make([]model.CitationRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}
