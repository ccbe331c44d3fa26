package metadata

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRow_Entries(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want int
	}{
		{"rows", Row{"p": []Row{{"a": 1}, {"a": 2}}}, 2},
		{"maps", Row{"p": []map[string]any{{"a": 1}}}, 1},
		{"any", Row{"p": []any{Row{"a": 1}, map[string]any{"a": 2}, "junk"}}, 2},
		{"single", Row{"p": Row{"a": 1}}, 1},
		{"missing", Row{}, 0},
		{"scalar", Row{"p": 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.row.Entries("p")); got != tt.want {
				t.Errorf("len(Entries) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAnyEntry(t *testing.T) {
	entries := []Row{{"x": 1}, {"x": 2}}
	if !AnyEntry(entries, func(r Row) bool { return r["x"] == 2 }) {
		t.Error("expected a match")
	}
	if AnyEntry(entries, func(r Row) bool { return r["x"] == 3 }) {
		t.Error("unexpected match")
	}
	if AnyEntry(nil, func(Row) bool { return true }) {
		t.Error("empty sequence never matches")
	}
}

func TestTable_SelectAndColumn(t *testing.T) {
	tbl := NewTable(Row{"name": "first"}, Row{"name": "second"})
	tbl.Append(Row{"name": "third"})
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d", tbl.Len())
	}
	sel := tbl.Select([]bool{true, false, true})
	if diff := cmp.Diff([]any{"first", "third"}, sel.Column("name")); diff != "" {
		t.Errorf("column (-want +got):\n%s", diff)
	}
	if got := tbl.Select(tbl.All()).Len(); got != 3 {
		t.Errorf("All selected %d rows", got)
	}
	if tbl.Row(1)["name"] != "second" {
		t.Errorf("Row(1) = %v", tbl.Row(1))
	}
}

func TestAnd(t *testing.T) {
	got := And([]bool{true, true, false}, []bool{true, false, true})
	if diff := cmp.Diff([]bool{true, false, false}, got); diff != "" {
		t.Errorf("And (-want +got):\n%s", diff)
	}
	if And() != nil {
		t.Error("And() should be nil")
	}
}
