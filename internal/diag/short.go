package diag

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"opcheck/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics one per line as
// "<severity> <ID> <path>:<line>:<col> <message>", sorted deterministically.
// Notes are rendered as "note" entries when includeNotes is set.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = appendShort(rendered, fs, severityLabel(d.Severity), d.Code, d.Primary, d.Message)
		if includeNotes {
			for _, note := range d.Notes {
				rendered = appendShort(rendered, fs, "note", d.Code, note.Span, note.Msg)
			}
		}
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendShort(out []shortDiagnostic, fs *source.FileSet, sev string, code Code, span source.Span, msg string) []shortDiagnostic {
	file := fs.Get(span.File)
	if file == nil {
		return out
	}
	start, _ := fs.Resolve(span)
	path := filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	return append(out, shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Path:     strings.TrimPrefix(path, "./"),
		Line:     start.Line,
		Column:   start.Col,
		Message:  sanitizeMessage(msg),
	})
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
