package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelGatesScopes(t *testing.T) {
	tests := []struct {
		level Level
		want  []Scope
	}{
		{LevelOff, nil},
		{LevelError, []Scope{ScopeRun}},
		{LevelPhase, []Scope{ScopeRun, ScopeFile}},
		{LevelDetail, []Scope{ScopeRun, ScopeFile, ScopeCase}},
		{LevelDebug, []Scope{ScopeRun, ScopeFile, ScopeCase, ScopeNode}},
	}
	for _, tt := range tests {
		var got []Scope
		for _, s := range []Scope{ScopeRun, ScopeFile, ScopeCase, ScopeNode} {
			if tt.level.ShouldEmit(s) {
				got = append(got, s)
			}
		}
		if len(got) != len(tt.want) {
			t.Errorf("%s emits %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestSpanEvents(t *testing.T) {
	ring := NewRingTracer(8, LevelDetail)
	root := Begin(ring, ScopeRun, "run", 0)
	c := Begin(ring, ScopeCase, "case", root.ID())
	c.Attr("type", "int32").Attr("tree", "x").End("one")
	Point(ring, ScopeNode, "sema.binary", "filtered", c.ID())
	if n := Begin(ring, ScopeNode, "node", c.ID()); n.ID() != 0 {
		t.Fatalf("filtered span has id %d", n.ID())
	}
	root.End("")
	root.End("again")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("events = %+v", events)
	}
	end := events[2]
	if end.Kind != KindEnd || end.Name != "case" || end.Detail != "one" || end.ParentID != root.ID() {
		t.Fatalf("case end = %+v", end)
	}
	if v, ok := end.Attr("tree"); !ok || v != "x" || end.Attrs[0].Key != "type" {
		t.Fatalf("attrs = %+v", end.Attrs)
	}
	if events[0].Seq >= events[3].Seq {
		t.Fatalf("sequence not increasing: %d, %d", events[0].Seq, events[3].Seq)
	}
}

func TestRingWrapsOldestFirst(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, "") != "cde" {
		t.Fatalf("ring = %v", names)
	}
}

func TestFormatText(t *testing.T) {
	ev := &Event{Seq: 7, Kind: KindEnd, Scope: ScopeFile, Name: "driver.file", Detail: "done",
		Attrs: []Attr{{"path", "a.toml"}, {"cases", "2"}}}
	got := string(FormatEvent(ev, FormatText))
	want := "#7      [file] ← driver.file (done) 0s {path=a.toml, cases=2}\n"
	if got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestFormatNDJSON(t *testing.T) {
	ev := &Event{Seq: 3, Kind: KindPoint, Scope: ScopeNode, Name: "sema.binary", Detail: "+ -> int64"}
	var decoded map[string]any
	if err := json.Unmarshal(FormatEvent(ev, FormatNDJSON), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["kind"] != "point" || decoded["scope"] != "node" || decoded["detail"] != "+ -> int64" {
		t.Fatalf("json = %v", decoded)
	}
}

func TestNewModes(t *testing.T) {
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr != Nop {
		t.Fatalf("off = %v, %v", tr, err)
	}

	var buf bytes.Buffer
	stream, err := New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	Begin(stream, ScopeRun, "run", 0).End("")
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("stream wrote %q", buf.String())
	}

	buf.Reset()
	ring, err := New(Config{Level: LevelPhase, Mode: ModeRing, Output: &buf, Format: FormatNDJSON})
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	Begin(ring, ScopeFile, "driver.file", 0).End("error")
	if buf.Len() != 0 {
		t.Fatalf("ring wrote before a dump: %q", buf.String())
	}
	if err := DumpRings(ring); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 || !strings.Contains(buf.String(), `"detail":"error"`) {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestContextCarriesTracer(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should give Nop")
	}
	ring := NewRingTracer(1, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer lost")
	}
}
