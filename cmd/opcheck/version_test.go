package main

import (
	"strings"
	"testing"

	"opcheck/internal/version"
)

func TestRenderVersionPretty(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc"}
	var b strings.Builder
	renderVersionPretty(&b, info, versionOptions{showHash: true, showDate: true})
	want := "opcheck 1.2.3\ncommit: abc\nbuilt:  unknown\n"
	if b.String() != want {
		t.Fatalf("pretty = %q, want %q", b.String(), want)
	}
}

func TestVersionJSON(t *testing.T) {
	orig := version.Version
	t.Cleanup(func() { version.Version = orig })
	version.Version = " "

	info := collectVersionInfo()
	if info.Version != "dev" {
		t.Fatalf("blank version = %q", info.Version)
	}
	p := versionJSON(info, versionOptions{showDate: true})
	if p.Tool != "opcheck" || p.GitCommit != "" || p.BuildDate != "unknown" {
		t.Fatalf("payload = %+v", p)
	}
}
