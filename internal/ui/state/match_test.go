package state

import (
	"testing"

	"github.com/atomicstack/susum/internal/instance"
)

func testRecords() []instance.Record {
	return []instance.Record{
		instance.New("i-1", []instance.Tag{{Key: "Name", Value: "web"}}),
		instance.New("i-2", nil),
		instance.New("i-3", []instance.Tag{{Key: "Name", Value: "db"}, {Key: "env", Value: "prod"}}),
	}
}

func ids(records []instance.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID()
	}
	return out
}

func TestMatchEmptyQueryIsVacuous(t *testing.T) {
	for _, r := range testRecords() {
		for _, q := range []string{"", "   "} {
			res := Match(r, q)
			if !res.Matched || res.Distance != 0 {
				t.Fatalf("expected vacuous match for %s with %q, got %#v", r.ID(), q, res)
			}
		}
	}
}

func TestMatchFields(t *testing.T) {
	records := testRecords()

	res := Match(records[0], "web")
	if !res.Matched || res.Field.Kind != FieldTagValue || res.Field.Key != "Name" {
		t.Fatalf("expected Name value match, got %#v", res)
	}
	if res.Distance != 0 {
		t.Fatalf("expected exact match distance 0, got %d", res.Distance)
	}

	res = Match(records[2], "env")
	if !res.Matched || res.Field.Kind != FieldTagKey || res.Field.Text != "env" {
		t.Fatalf("expected tag key match, got %#v", res)
	}

	res = Match(records[1], "i-2")
	if !res.Matched || res.Field.Kind != FieldID {
		t.Fatalf("expected id match, got %#v", res)
	}

	if res := Match(records[1], "web"); res.Matched {
		t.Fatalf("expected no match for untagged record, got %#v", res)
	}
}

func TestMatchIsSubsequenceAndCaseInsensitive(t *testing.T) {
	r := instance.New("i-0abc", []instance.Tag{{Key: "Name", Value: "Payments-API"}})
	for _, q := range []string{"pay", "PAYAPI", "pmts", "i0ab"} {
		if !Match(r, q).Matched {
			t.Fatalf("expected %q to match", q)
		}
	}
	if Match(r, "apipay").Matched {
		t.Fatalf("expected out-of-order query not to match")
	}
}

func TestMatchPrefersClosestField(t *testing.T) {
	r := instance.New("i-web00000", []instance.Tag{{Key: "Name", Value: "web"}})
	res := Match(r, "web")
	if res.Field.Kind != FieldTagValue {
		t.Fatalf("expected exact tag value to beat longer id, got %#v", res)
	}
}

func TestMatchTiesGoToEarliestField(t *testing.T) {
	r := instance.New("web", []instance.Tag{{Key: "Name", Value: "web"}})
	res := Match(r, "web")
	if res.Field.Kind != FieldID {
		t.Fatalf("expected id to win tie, got %#v", res)
	}
}

func TestFilterRecordsPreservesOrder(t *testing.T) {
	records := testRecords()
	got := ids(FilterRecords(records, ""))
	want := []string{"i-1", "i-2", "i-3"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	got = ids(FilterRecords(records, "i-"))
	if len(got) != 3 || got[0] != "i-1" || got[2] != "i-3" {
		t.Fatalf("expected stable order for shared prefix, got %v", got)
	}

	if len(FilterRecords(records, "zzz")) != 0 {
		t.Fatalf("expected no matches")
	}
}

func TestFilterRecordsMatchesExactlyTheMatchingRecords(t *testing.T) {
	records := testRecords()
	for _, q := range []string{"web", "db", "prod", "i", "e", "Name", "x"} {
		filtered := FilterRecords(records, q)
		in := make(map[string]bool, len(filtered))
		for _, r := range filtered {
			in[r.ID()] = true
		}
		for _, r := range records {
			if Match(r, q).Matched != in[r.ID()] {
				t.Fatalf("query %q: record %s membership disagrees with Match", q, r.ID())
			}
		}
	}
}
