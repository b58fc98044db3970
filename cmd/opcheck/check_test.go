package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const passingProbe = `
[[var]]
name = "b"
type = "uint8"

[[case]]
name = "tie-break"
expr = "b + 5"
type = "uint8"
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

func newTestCommands() (root, check *cobra.Command) {
	root = &cobra.Command{Use: "opcheck", SilenceUsage: true, SilenceErrors: true}
	addRootFlags(root)
	check = &cobra.Command{Use: "check", RunE: runCheck}
	addCheckFlags(check)
	root.AddCommand(check)
	return root, check
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root, _ := newTestCommands()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestReadCheckConfigMergesManifest(t *testing.T) {
	_, check := newTestCommands()
	if err := check.ParseFlags([]string{"--jobs", "2", "--color", "off", "--unsafe"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	checked, jobs, maxDiags := true, 3, 7
	manifest := &projectManifest{Check: checkSettings{
		Checked:        &checked,
		Jobs:           &jobs,
		MaxDiagnostics: &maxDiags,
		Format:         "short",
	}}

	cfg, err := readCheckConfig(check, manifest)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.format != "short" {
		t.Errorf("format = %q, want short from the manifest", cfg.format)
	}
	if cfg.opts.Jobs != 2 {
		t.Errorf("jobs = %d, want the flag value 2", cfg.opts.Jobs)
	}
	if cfg.opts.MaxDiagnostics != 7 {
		t.Errorf("max diagnostics = %d", cfg.opts.MaxDiagnostics)
	}
	if cfg.opts.Checked == nil || !*cfg.opts.Checked {
		t.Errorf("checked = %v", cfg.opts.Checked)
	}
	if cfg.opts.Unsafe == nil || !*cfg.opts.Unsafe {
		t.Errorf("unsafe = %v", cfg.opts.Unsafe)
	}
	if cfg.cache || cfg.color {
		t.Errorf("cache=%v color=%v", cfg.cache, cfg.color)
	}
}

func TestReadCheckConfigRejectsBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"--format", "xml"},
		{"--ui", "sometimes"},
		{"--path-mode", "weird"},
		{"--color", "purple"},
		{"--jobs", "-2"},
	} {
		_, check := newTestCommands()
		if err := check.ParseFlags(args); err != nil {
			t.Fatalf("parse %v: %v", args, err)
		}
		if _, err := readCheckConfig(check, nil); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestCheckCommandShort(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pass.toml"), passingProbe)
	writeFile(t, filepath.Join(dir, "fail.toml"), failingProbe)

	stdout, stderr, err := runCLI(t, "check", "--format", "short", "--ui", "off", "--color", "off", "--emit-tree", dir)
	if !errors.Is(err, errSilent) {
		t.Fatalf("err = %v, want the silent failure", err)
	}
	for _, want := range []string{
		"== " + filepath.Join(dir, "fail.toml"),
		"  bad: <error>",
		"error SEM3001",
		"tie-break:",
		": uint8",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout lacks %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "checked 2 files, 3 cases, 1 failed") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCheckCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pass.toml"), passingProbe)

	stdout, stderr, err := runCLI(t, "check", "--format", "json", "--quiet", dir)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, stderr)
	}
	var report checkReportJSON
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if report.Cases != 1 || report.Failed != 0 || len(report.Files) != 1 {
		t.Fatalf("report = %+v", report)
	}
	c := report.Files[0].Cases[0]
	if c.Name != "tie-break" || c.Type != "uint8" || c.Failed {
		t.Fatalf("case = %+v", c)
	}
	if stderr != "" {
		t.Fatalf("quiet run wrote %q", stderr)
	}
}

func TestCheckCommandManifestOverridesFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "opcheck.toml"), "[check]\nformat = \"json\"\n")
	writeFile(t, filepath.Join(dir, "probes", "pass.toml"), passingProbe)

	stdout, _, err := runCLI(t, "check", filepath.Join(dir, "probes"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Fatalf("expected JSON from the manifest format, got %q", stdout)
	}
}

func TestCheckCommandNoFiles(t *testing.T) {
	_, _, err := runCLI(t, "check", "--ui", "off", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "no probe files") {
		t.Fatalf("err = %v", err)
	}
}

func TestPlural(t *testing.T) {
	if plural(1, "case") != "case" || plural(0, "case") != "cases" || plural(2, "file") != "files" {
		t.Fatal("plural is off")
	}
}
