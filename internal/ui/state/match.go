package state

import (
	"strings"

	"github.com/atomicstack/susum/internal/instance"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FieldKind identifies which part of a record satisfied a query.
type FieldKind int

const (
	FieldNone FieldKind = iota
	FieldID
	FieldTagKey
	FieldTagValue
)

// Field is the searchable text that produced a match.
type Field struct {
	Kind FieldKind
	// Key is the owning tag key for FieldTagKey and FieldTagValue.
	Key  string
	Text string
}

// MatchResult reports whether a record matched and how well. Distance is
// lower for closer matches and is zero for the vacuous empty-query match.
type MatchResult struct {
	Matched  bool
	Distance int
	Field    Field
}

// Match scores query against the record's identifier and every tag key and
// value. The closest field wins; ties go to the earliest field in the order
// id, then tags in display order with the key ahead of its value.
//
// Leading and trailing whitespace in query is ignored, so a query of only
// spaces matches every record the same way the empty query does.
func Match(r instance.Record, query string) MatchResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return MatchResult{Matched: true}
	}
	best := MatchResult{Distance: -1}
	consider := func(field Field) {
		if field.Text == "" {
			return
		}
		distance := fuzzy.RankMatchNormalizedFold(trimmed, field.Text)
		if distance < 0 {
			return
		}
		if !best.Matched || distance < best.Distance {
			best = MatchResult{Matched: true, Distance: distance, Field: field}
		}
	}
	consider(Field{Kind: FieldID, Text: r.ID()})
	for _, tag := range r.Tags() {
		consider(Field{Kind: FieldTagKey, Key: tag.Key, Text: tag.Key})
		consider(Field{Kind: FieldTagValue, Key: tag.Key, Text: tag.Value})
	}
	if !best.Matched {
		return MatchResult{}
	}
	return best
}

// FilterRecords returns the records matching query in their original order.
func FilterRecords(records []instance.Record, query string) []instance.Record {
	if strings.TrimSpace(query) == "" {
		return instance.Clone(records)
	}
	filtered := make([]instance.Record, 0, len(records))
	for _, r := range records {
		if Match(r, query).Matched {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
