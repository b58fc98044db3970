package probe

import (
	"slices"
	"strings"
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/source"
	"opcheck/internal/trace"
)

const runTOML = `
[[class]]
name = "Base"

[[class]]
name = "Derived"
base = "Base"
sealed = true
fields = [{ name = "count", type = "int32" }]

[[enum]]
name = "Color"
members = ["Red", "Green"]

[[var]]
name = "b"
type = "uint8"

[[var]]
name = "x"
type = "int32"

[[var]]
name = "d"
type = "Derived"

[[var]]
name = "c"
type = "Color"

[[var]]
name = "w"
type = "uint64"

[[case]]
name = "tie-break"
expr = "b + 5"
type = "uint8"
tree = "(+:uint8 b 5:uint8)"
diagnostics = []

[[case]]
name = "large literal"
expr = "x + 3000000000"
tree = "(+:int64 (widen:int64 x) 3000000000:int64)"

[[case]]
name = "zero product"
expr = "x * 0"
tree = "0:int32"

[[case]]
name = "divide by zero"
expr = "x / 0"
diagnostics = ["SEM3004"]

[[case]]
name = "unknown operand"
expr = "unknown + 1"
diagnostics = ["SYN2005"]

[[case]]
name = "checked scope"
expr = "checked(x + 1)"
tree = "(checked+:int32 x 1:int32)"

[[case]]
name = "case override"
expr = "&x"
unsafe = true
tree = "(&:int32* x)"

[[case]]
name = "field"
expr = "d.count++"
tree = "(post++:int32 d.count)"

[[case]]
name = "enum member"
expr = "c == Color.Green"
type = "bool"

[[case]]
name = "always of type"
expr = "d is Base"
tree = "true"
diagnostics = ["SEM3008"]

[[case]]
name = "suffix"
expr = "x + 7l"
tree = "(+:int64 (widen:int64 x) 7:int64)"

[[case]]
name = "negative against uint64"
expr = "w == -1"
diagnostics = ["SEM3003"]
`

func runProbe(t *testing.T, content string, cfg RunConfig) (*source.FileSet, *FileResult) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("probe.toml", []byte(content))
	doc, err := DecodeTOML("probe.toml", []byte(content))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res, err := Run(fs, fs.Get(id), doc, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return fs, res
}

func TestRunCases(t *testing.T) {
	_, res := runProbe(t, runTOML, RunConfig{})
	if len(res.Cases) != 12 {
		t.Fatalf("cases = %d", len(res.Cases))
	}
	for _, cr := range res.Cases {
		if len(cr.Mismatches) > 0 {
			t.Errorf("%s: %s", cr.Name, strings.Join(cr.Mismatches, "; "))
		}
	}
	byName := func(name string) CaseResult {
		for _, cr := range res.Cases {
			if cr.Name == name {
				return cr
			}
		}
		t.Fatalf("no case %q", name)
		return CaseResult{}
	}
	if cr := byName("tie-break"); cr.Failed() || cr.Type != "uint8" {
		t.Fatalf("tie-break = %+v", cr)
	}
	if cr := byName("divide by zero"); !cr.Failed() || cr.Tree != "" {
		t.Fatalf("divide by zero should fail without a tree: %+v", cr)
	}
	if cr := byName("always of type"); cr.Failed() {
		t.Fatalf("a warning alone must not fail the case: %+v", cr)
	}
	if got := res.Bag.Codes(); !slices.Equal(got, []string{"SEM3004", "SYN2005", "SEM3008", "SEM3003"}) {
		t.Fatalf("bag codes = %v", got)
	}
}

func TestRunLocatesExpressionsInFile(t *testing.T) {
	content := "[[var]]\nname = \"x\"\ntype = \"int32\"\n\n[[case]]\nexpr = \"x + true\"\n"
	fs, res := runProbe(t, content, RunConfig{})
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.SemaBadOperatorForTypes {
		t.Fatalf("diagnostics = %v", res.Bag.Codes())
	}
	sp := items[0].Primary
	f := fs.Get(sp.File)
	if f.Path != "probe.toml" {
		t.Fatalf("diagnostic points into %q", f.Path)
	}
	if got := string(f.Content[sp.Start:sp.End]); got != "x + true" {
		t.Fatalf("span covers %q", got)
	}
}

func TestRunReportsMismatches(t *testing.T) {
	content := `
[[var]]
name = "x"
type = "int32"

[[case]]
name = "wrong type"
expr = "x + 1"
type = "int64"

[[case]]
name = "wrong diagnostics"
expr = "x + 1"
diagnostics = ["SEM3001"]
`
	_, res := runProbe(t, content, RunConfig{})
	if got := res.Bag.Codes(); !slices.Equal(got, []string{"PRJ5001", "PRJ5002"}) {
		t.Fatalf("bag codes = %v", got)
	}
	first := res.Cases[0]
	if !first.Failed() || first.Mismatches[0] != "type: expected int64, got int32" {
		t.Fatalf("mismatch = %v", first.Mismatches)
	}
	second := res.Cases[1]
	if second.Mismatches[0] != "diagnostics: expected [SEM3001], got []" {
		t.Fatalf("mismatch = %v", second.Mismatches)
	}
}

func TestRunConfigOverridesOptions(t *testing.T) {
	content := `
[options]
unsafe = true

[[var]]
name = "x"
type = "int32"

[[case]]
expr = "&x"
`
	off := false
	_, res := runProbe(t, content, RunConfig{Unsafe: &off})
	if got := res.Bag.Codes(); !slices.Equal(got, []string{"SEM3016"}) {
		t.Fatalf("bag codes = %v", got)
	}

	_, res = runProbe(t, content, RunConfig{})
	if res.Cases[0].Tree != "(&:int32* x)" {
		t.Fatalf("tree = %q", res.Cases[0].Tree)
	}
}

func TestRunVirtualFileForMissingExpr(t *testing.T) {
	// the escaped quote keeps the raw text from matching the decoded expr
	content := "[[case]]\nexpr = \"\\\"a\\\"\"\n"
	fs, res := runProbe(t, content, RunConfig{})
	cr := res.Cases[0]
	if cr.Tree != `"a"` {
		t.Fatalf("tree = %q", cr.Tree)
	}
	if f := fs.Get(cr.Span.File); f == nil || f.Path != "probe.toml#case 1" {
		t.Fatalf("span file = %+v", f)
	}
}

func TestRunTracesCases(t *testing.T) {
	tracer := trace.NewRingTracer(16, trace.LevelDetail)
	content := "[[case]]\nname = \"one\"\nexpr = \"1 + 2\"\n"
	runProbe(t, content, RunConfig{Tracer: tracer})
	events := tracer.Snapshot()
	var found bool
	for _, ev := range events {
		if ev.Name == "probe.case" && ev.Detail == "one" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no probe.case event in %+v", events)
	}
}
