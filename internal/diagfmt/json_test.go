package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, PathMode: PathModeBasename}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SEM3001" || d.Title != "Operator cannot be applied to operands" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location.File != "add.toml" || d.Location.StartLine != 2 || d.Location.StartCol != 9 || d.Location.EndCol != 17 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartCol != 13 {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestJSONRespectsMaxAndNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(bag.Items()[0])
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatal("notes included without IncludeNotes")
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Fatal("positions included without IncludePositions")
	}
}

func TestParsePathMode(t *testing.T) {
	for _, s := range []string{"auto", "absolute", "relative", "basename"} {
		m, ok := ParsePathMode(s)
		if !ok || m.String() != s {
			t.Errorf("ParsePathMode(%q) = %v %v", s, m, ok)
		}
	}
	if _, ok := ParsePathMode("short"); ok {
		t.Fatal("unknown mode accepted")
	}
}
