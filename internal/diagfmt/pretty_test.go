package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/source"
)

const probeText = "[[case]]\nexpr = \"x + true\"\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/probes/add.toml", []byte(probeText))
	start := uint32(strings.Index(probeText, "x + true")) // #nosec G115 -- small constant
	bag := diag.NewBag(4)
	d := diag.New(diag.SevError, diag.SemaBadOperatorForTypes,
		source.Span{File: id, Start: start, End: start + 8},
		"operator '+' cannot be applied to operands of type 'int32' and 'bool'")
	d = d.WithNote(source.Span{File: id, Start: start + 4, End: start + 8}, "right operand is bool")
	bag.Add(d)
	return bag, fs
}

func TestPrettyLayout(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	want := strings.Join([]string{
		"add.toml:2:9: ERROR SEM3001: operator '+' cannot be applied to operands of type 'int32' and 'bool'",
		"  |",
		"1 | [[case]]",
		"2 | expr = \"x + true\"",
		"  |         ^~~~~~~",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyNotes(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	out := buf.String()
	if !strings.Contains(out, "note: add.toml:2:13: right operand is bool") {
		t.Fatalf("expected note with location, got:\n%s", out)
	}
	if !strings.Contains(out, "  |             ^~~~\n") {
		t.Fatalf("expected note caret, got:\n%s", out)
	}
}

func TestPrettyPathModes(t *testing.T) {
	bag, fs := sampleBag(t)
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/probes/add.toml:2:9"},
		{PathModeBasename, "add.toml:2:9"},
		{PathModeAuto, "/home/user/project/probes/add.toml:2:9"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
		if !strings.HasPrefix(buf.String(), tt.want) {
			t.Errorf("%s: got %q", tt.mode, buf.String())
		}
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("colored output has no escape codes")
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	text := "expr = \"名前 + 1\"\n"
	id := fs.AddVirtual("w.toml", []byte(text))
	start := uint32(strings.Index(text, "+")) // #nosec G115 -- small constant
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.SemaBadOperatorForTypes, source.Span{File: id, Start: start, End: start + 1}, "w"))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	// "expr = \"" is 8 columns, each CJK rune takes two, then a space
	if got := lines[3]; got != "  |              ^" {
		t.Fatalf("caret line = %q", got)
	}
}

func TestShort(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, false); err != nil {
		t.Fatalf("short: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "error SEM3001 ") || !strings.HasSuffix(buf.String(), ":2:9 operator '+' cannot be applied to operands of type 'int32' and 'bool'\n") {
		t.Fatalf("short = %q", buf.String())
	}
}
