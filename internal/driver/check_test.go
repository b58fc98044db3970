package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"opcheck/internal/diag"
	"opcheck/internal/driver"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

const passingProbe = `
[[var]]
name = "b"
type = "uint8"

[[case]]
name = "tie-break"
expr = "b + 5"
type = "uint8"
diagnostics = []
`

const failingProbe = `
[[var]]
name = "x"
type = "int32"

[[case]]
name = "bad"
expr = "x + true"

[[case]]
name = "fine"
expr = "x + 1"
`

func TestListProbeFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.toml"), passingProbe)
	writeFile(t, filepath.Join(dir, "a", "c.yaml"), "case:\n  - expr: '1'\n")
	writeFile(t, filepath.Join(dir, "opcheck.toml"), "[check]\n")
	writeFile(t, filepath.Join(dir, ".hidden", "d.toml"), passingProbe)
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	files, err := driver.ListProbeFiles([]string{dir, filepath.Join(dir, "b.toml")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "c.yaml"), filepath.Join(dir, "b.toml")}
	if !slices.Equal(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}

	if _, err := driver.ListProbeFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for a missing path")
	}
}

func TestCheckReportsPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pass.toml"), passingProbe)
	writeFile(t, filepath.Join(dir, "fail.toml"), failingProbe)
	writeFile(t, filepath.Join(dir, "broken.toml"), "[[case]\n")
	writeFile(t, filepath.Join(dir, "decl.toml"), "[[var]]\nname = \"v\"\ntype = \"Nope\"\n[[case]]\nexpr = \"v\"\n")

	var mu sync.Mutex
	var events []driver.Event
	sink := driver.SinkFunc(func(ev driver.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	res, err := driver.Check(context.Background(), []string{dir}, driver.Options{Jobs: 2, Progress: sink, BaseDir: dir})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(res.Files) != 4 {
		t.Fatalf("files = %d", len(res.Files))
	}
	byName := make(map[string]*driver.FileReport)
	for i := range res.Files {
		byName[filepath.Base(res.Files[i].Path)] = &res.Files[i]
	}

	if f := byName["pass.toml"]; f.Failed() || len(f.Cases) != 1 || f.Cases[0].Tree != "(+:uint8 b 5:uint8)" {
		t.Fatalf("pass.toml = %+v", f)
	}
	if f := byName["fail.toml"]; !f.Failed() || f.FailedCases() != 1 || !slices.Equal(f.Bag.Codes(), []string{"SEM3001"}) {
		t.Fatalf("fail.toml codes = %v", f.Bag.Codes())
	}
	if f := byName["broken.toml"]; !slices.Equal(f.Bag.Codes(), []string{diag.IODecodeError.ID()}) {
		t.Fatalf("broken.toml codes = %v", f.Bag.Codes())
	}
	if f := byName["decl.toml"]; !slices.Equal(f.Bag.Codes(), []string{diag.SynBadDeclaration.ID()}) {
		t.Fatalf("decl.toml codes = %v", f.Bag.Codes())
	}
	if !res.HasErrors() {
		t.Fatal("run should have errors")
	}
	cases, failed, cached := res.Totals()
	if cases != 3 || failed != 1 || cached != 0 {
		t.Fatalf("totals = %d %d %d", cases, failed, cached)
	}

	mu.Lock()
	defer mu.Unlock()
	var queued, finished int
	for _, ev := range events {
		switch ev.Status {
		case driver.StatusQueued:
			queued++
		case driver.StatusDone, driver.StatusError:
			finished++
		}
	}
	if queued != 4 || finished != 4 {
		t.Fatalf("queued=%d finished=%d", queued, finished)
	}
	if _, ok := res.Timing.Phase("discover"); !ok {
		t.Fatalf("timing = %+v", res.Timing)
	}
	if _, ok := res.Timing.Phase("check"); !ok {
		t.Fatalf("timing = %+v", res.Timing)
	}
}

func TestCheckUsesCache(t *testing.T) {
	dir := t.TempDir()
	probePath := filepath.Join(dir, "p.toml")
	writeFile(t, probePath, failingProbe)
	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	opts := driver.Options{Cache: cache}

	first, err := driver.Check(context.Background(), []string{probePath}, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := driver.Check(context.Background(), []string{probePath}, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	a, b := first.Files[0], second.Files[0]
	if a.Cached || !b.Cached {
		t.Fatalf("cached flags = %v %v", a.Cached, b.Cached)
	}
	if !slices.Equal(a.Bag.Codes(), b.Bag.Codes()) {
		t.Fatalf("codes differ: %v vs %v", a.Bag.Codes(), b.Bag.Codes())
	}
	if b.Bag.Items()[0].Primary != a.Bag.Items()[0].Primary {
		t.Fatalf("span not restored: %+v vs %+v", b.Bag.Items()[0].Primary, a.Bag.Items()[0].Primary)
	}
	if b.Cases[1].Tree != a.Cases[1].Tree || b.Cases[1].Tree == "" {
		t.Fatalf("tree not restored: %q", b.Cases[1].Tree)
	}

	on := true
	third, err := driver.Check(context.Background(), []string{probePath}, driver.Options{Cache: cache, Checked: &on})
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Files[0].Cached {
		t.Fatal("different options must miss the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	fourth, err := driver.Check(context.Background(), []string{probePath}, opts)
	if err != nil {
		t.Fatalf("fourth run: %v", err)
	}
	if fourth.Files[0].Cached {
		t.Fatal("cache should be empty after DropAll")
	}
}

func TestCheckCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "p.toml"), passingProbe)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Check(ctx, []string{dir}, driver.Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}
