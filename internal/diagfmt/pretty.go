package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"opcheck/internal/diag"
	"opcheck/internal/source"
)

type palette struct {
	err, warn, info, code, path, gutter, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.FgBlue),
		gutter: color.New(color.FgHiBlack),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   |
//	 3 | expr = "x + true"
//	   |         ^~~~~~~~
//
// затем Notes в том же формате. Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sevColor := p.severity(d.Severity)
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	p.path.Fprintf(w, "%s:%d:%d:", formatPath(f, fs, opts.PathMode), start.Line, start.Col)
	fmt.Fprint(w, " ")
	sevColor.Fprint(w, d.Severity.String())
	fmt.Fprint(w, " ")
	p.code.Fprint(w, d.Code.ID())
	fmt.Fprintf(w, ": %s\n", d.Message)

	if f != nil {
		writeSnippet(w, f, fs, d.Primary, opts.Context, sevColor, p)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		p.note.Fprint(w, "note: ")
		fmt.Fprintf(w, "%s:%d:%d: %s\n", formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
		if nf != nil {
			writeSnippet(w, nf, fs, n.Span, 0, p.note, p)
		}
	}
}

// writeSnippet prints the primary line with up to context lines above it
// and a caret under the span. Spans running past the line end are
// underlined to the end of the line.
func writeSnippet(w io.Writer, f *source.File, fs *source.FileSet, sp source.Span, context int8, mark *color.Color, p palette) {
	start, end := fs.Resolve(sp)
	if start.Line == 0 {
		return
	}
	first := start.Line
	if context > 0 {
		first = uint32(max(1, int64(start.Line)-int64(context))) // #nosec G115 -- at least 1
	}
	width := len(strconv.FormatUint(uint64(start.Line), 10))
	pad := strings.Repeat(" ", width)

	p.gutter.Fprintf(w, "%s |\n", pad)
	for ln := first; ln <= start.Line; ln++ {
		p.gutter.Fprintf(w, "%*d | ", width, ln)
		fmt.Fprintln(w, expandTabs(f.GetLine(ln)))
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	stop = max(stop, col)
	lead := runewidth.StringWidth(expandTabs(line[:col]))
	span := runewidth.StringWidth(expandTabs(line[col:stop]))

	p.gutter.Fprintf(w, "%s | ", pad)
	fmt.Fprint(w, strings.Repeat(" ", lead))
	mark.Fprintln(w, caret(span))
}

func caret(width int) string {
	if width <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", width-1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
