package probe

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"opcheck/internal/diag"
	"opcheck/internal/hir"
	"opcheck/internal/sema"
	"opcheck/internal/source"
	"opcheck/internal/trace"
	"opcheck/internal/types"
)

// RunConfig overrides document options for a whole run.
type RunConfig struct {
	Checked *bool
	Unsafe  *bool
	// MaxDiagnostics bounds each case's bag; 0 means 100.
	MaxDiagnostics int
	Tracer         trace.Tracer
	TraceParent    uint64
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string
	Expr string
	Span source.Span
	// Tree and Type are empty when resolution failed.
	Tree        string
	Type        string
	Diagnostics []diag.Diagnostic
	// Mismatches describe unmet expectations, one line each.
	Mismatches []string
}

// Failed reports an error diagnostic or an unmet expectation.
func (r *CaseResult) Failed() bool {
	if len(r.Mismatches) > 0 {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Report adds the case diagnostics to bag, followed by one error per
// unmet expectation.
func (r *CaseResult) Report(bag *diag.Bag) {
	for _, d := range r.Diagnostics {
		bag.Add(d)
	}
	for _, m := range r.Mismatches {
		code := diag.PrjTypeMismatch
		if strings.HasPrefix(m, "diagnostics") {
			code = diag.PrjDiagnosticsMismatch
		}
		bag.Add(diag.New(diag.SevError, code, r.Span, fmt.Sprintf("case %q: %s", r.Name, m)))
	}
}

// FileResult groups the results of one probe file.
type FileResult struct {
	Path  string
	Cases []CaseResult
	// Bag holds every case diagnostic plus expectation mismatches.
	Bag *diag.Bag
}

// Run checks every case of doc. file must be the probe file the document
// was decoded from; expression spans point into it when the expression
// text can be found there and into a virtual file in fs otherwise.
func Run(fs *source.FileSet, file *source.File, doc *Document, cfg RunConfig) (*FileResult, error) {
	env, err := BuildEnv(doc)
	if err != nil {
		return nil, err
	}
	maxDiags := cfg.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 100
	}
	result := &FileResult{Path: file.Path, Bag: diag.NewBag(maxDiags * max(1, len(doc.Cases)))}

	base := sema.Context{
		Checked:       doc.Options.Checked,
		Unsafe:        doc.Options.Unsafe,
		EnclosingType: env.Enclosing,
	}
	if cfg.Checked != nil {
		base.Checked = *cfg.Checked
	}
	if cfg.Unsafe != nil {
		base.Unsafe = *cfg.Unsafe
	}

	from := 0
	for i, c := range doc.Cases {
		ctx := base
		if c.Checked != nil {
			ctx.Checked = *c.Checked
		}
		if c.Unsafe != nil {
			ctx.Unsafe = *c.Unsafe
		}

		fileID, off := file.ID, 0
		if at := bytes.Index(file.Content[from:], []byte(c.Expr)); at >= 0 {
			off = from + at
			from = off + len(c.Expr)
		} else {
			fileID = fs.AddVirtual(VirtualPath(file.Path, doc.CaseName(i)), []byte(c.Expr))
		}
		offset, err := safecast.Conv[uint32](off)
		if err != nil {
			return nil, fmt.Errorf("%s: case %q: %w", file.Path, doc.CaseName(i), err)
		}

		span := trace.Begin(cfg.Tracer, trace.ScopeCase, "probe.case", cfg.TraceParent)
		cr := runCase(env, ctx, doc.CaseName(i), c, fileID, offset, maxDiags, cfg.Tracer, span.ID())
		span.Attr("type", cr.Type).End(cr.Name)

		cr.Report(result.Bag)
		result.Cases = append(result.Cases, cr)
	}
	return result, nil
}

// VirtualPath names the in-memory file that holds the text of a case
// whose expression could not be found verbatim in the probe file.
func VirtualPath(path, caseName string) string {
	return path + "#" + caseName
}

func runCase(env *Env, ctx sema.Context, name string, c Case, file source.FileID, base uint32, maxDiags int, tracer trace.Tracer, parent uint64) CaseResult {
	bag := diag.NewBag(maxDiags)
	// парсер и lowerer могут сообщить об одном и том же узле
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	checker := sema.New(sema.Options{
		Types:       env.Types,
		Reporter:    reporter,
		Tracer:      tracer,
		TraceParent: parent,
	})
	cr := CaseResult{
		Name: name,
		Expr: c.Expr,
		Span: source.Span{File: file, Start: base, End: base + uint32(len(c.Expr))}, // #nosec G115 -- bounded by the file size
	}

	node, ok := ParseExpr(file, base, []byte(c.Expr), ParseOptions{
		Reporter:   reporter,
		IsTypeName: env.IsTypeName,
	})
	var res *hir.Expr
	if ok {
		res = NewLowerer(env, checker, reporter).Lower(ctx, node)
	}
	if res != nil {
		cr.Tree = hir.Format(env.Types, res)
		cr.Type = types.Label(env.Types, res.Type)
	}
	cr.Diagnostics = slices.Clone(bag.Items())
	cr.Mismatches = expectations(c, &cr)
	return cr
}

func expectations(c Case, cr *CaseResult) []string {
	var out []string
	if c.Type != "" && c.Type != cr.Type {
		got := cr.Type
		if got == "" {
			got = "<error>"
		}
		out = append(out, fmt.Sprintf("type: expected %s, got %s", c.Type, got))
	}
	if c.Tree != "" && c.Tree != cr.Tree {
		out = append(out, fmt.Sprintf("tree: expected %s, got %s", c.Tree, cr.Tree))
	}
	if c.Diagnostics != nil {
		got := make([]string, 0, len(cr.Diagnostics))
		for _, d := range cr.Diagnostics {
			got = append(got, d.Code.ID())
		}
		if !slices.Equal(c.Diagnostics, got) {
			out = append(out, fmt.Sprintf("diagnostics: expected [%s], got [%s]",
				strings.Join(c.Diagnostics, " "), strings.Join(got, " ")))
		}
	}
	return out
}
