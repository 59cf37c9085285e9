package instance

import (
	"sort"
	"strings"
)

// NameKey is the tag key that holds an instance's friendly name.
const NameKey = "Name"

// Tag is a single key/value pair attached to an instance.
type Tag struct {
	Key   string
	Value string
}

// Record is one selectable instance. Records are built with New and never
// modified afterwards; accessors hand out copies.
type Record struct {
	id   string
	tags []Tag
}

// New builds a Record, ordering tags with Name first and the remainder by
// key ascending.
func New(id string, tags []Tag) Record {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if (a.Key == NameKey) != (b.Key == NameKey) {
			return a.Key == NameKey
		}
		return a.Key < b.Key
	})
	return Record{id: id, tags: sorted}
}

// ID returns the instance identifier.
func (r Record) ID() string {
	return r.id
}

// Tags returns the ordered tags.
func (r Record) Tags() []Tag {
	if len(r.tags) == 0 {
		return nil
	}
	dup := make([]Tag, len(r.tags))
	copy(dup, r.tags)
	return dup
}

// Name returns the Name tag value, or "" when the instance has none.
func (r Record) Name() string {
	if len(r.tags) > 0 && r.tags[0].Key == NameKey {
		return r.tags[0].Value
	}
	return ""
}

// Label renders the record as a single display line.
func (r Record) Label() string {
	parts := make([]string, 0, len(r.tags)+1)
	parts = append(parts, r.id)
	for _, tag := range r.tags {
		if tag.Key == NameKey {
			parts = append(parts, tag.Value)
			continue
		}
		parts = append(parts, tag.Key+"="+tag.Value)
	}
	return strings.Join(parts, "  ")
}

// Clone produces a shallow copy of the provided records.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	dup := make([]Record, len(records))
	copy(dup, records)
	return dup
}
