package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"opcheck/internal/diag"
	"opcheck/internal/diagfmt"
	"opcheck/internal/hir"
	"opcheck/internal/probe"
	"opcheck/internal/sema"
	"opcheck/internal/source"
	"opcheck/internal/trace"
	"opcheck/internal/types"
)

const (
	replPrompt      = "op> "
	replHistoryFile = ".opcheck_history"
)

const replHelp = `Enter an expression to resolve it, or one of:
  let <name>: <type>     bind a local variable (const and param work too)
  :checked [on|off]      toggle checked arithmetic
  :unsafe [on|off]       toggle unsafe context
  :load <file>           replace declarations with those of a probe file
  :vars                  list bound variables
  :reset                 forget every declaration
  :help                  show this text
  :quit                  leave
`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Resolve expressions interactively",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup(false)
	colorOn, err := resolveColor(cmd)
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	session := newReplSession(maxDiags, colorOn)
	session.tracer = tracer
	out := cmd.OutOrStdout()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(session.complete)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Fprintln(out, "opcheck repl; :help for commands")
	for {
		line, err := ln.Prompt(replPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if session.handle(out, line) {
			break
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return nil
}

// replSession keeps declarations and context flags between inputs.
type replSession struct {
	env      *probe.Env
	fileSet  *source.FileSet
	ctx      sema.Context
	maxDiags int
	color    bool
	tracer   trace.Tracer
	inputs   int
}

func newReplSession(maxDiags int, color bool) *replSession {
	if maxDiags <= 0 {
		maxDiags = 100
	}
	return &replSession{
		env:      probe.NewEnv(),
		fileSet:  source.NewFileSet(),
		maxDiags: maxDiags,
		color:    color,
		tracer:   trace.Nop,
	}
}

// handle runs one line of input and reports whether the session ends.
func (s *replSession) handle(w io.Writer, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, ":"):
		return s.command(w, line)
	}
	if kind, rest, ok := declKeyword(line); ok {
		if err := s.declare(kind, rest); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
		return false
	}
	s.eval(w, line)
	return false
}

func (s *replSession) command(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":exit", ":q":
		return true
	case ":help":
		fmt.Fprint(w, replHelp)
	case ":checked":
		v, err := toggle(s.ctx.Checked, fields[1:])
		if err != nil {
			fmt.Fprintln(w, "error:", err)
			return false
		}
		s.ctx = s.ctx.WithChecked(v)
		fmt.Fprintf(w, "checked: %s\n", onOff(v))
	case ":unsafe":
		v, err := toggle(s.ctx.Unsafe, fields[1:])
		if err != nil {
			fmt.Fprintln(w, "error:", err)
			return false
		}
		s.ctx = s.ctx.WithUnsafe(v)
		fmt.Fprintf(w, "unsafe: %s\n", onOff(v))
	case ":vars":
		s.listVars(w)
	case ":reset":
		s.env = probe.NewEnv()
		s.ctx = sema.Context{}
		fmt.Fprintln(w, "declarations cleared.")
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(w, "usage: :load <file>")
			return false
		}
		if err := s.load(fields[1]); err != nil {
			fmt.Fprintln(w, "error:", err)
			return false
		}
		fmt.Fprintf(w, "loaded %s\n", fields[1])
	default:
		fmt.Fprintln(w, "unknown command. Type :help for help.")
	}
	return false
}

// declKeyword splits "let x: T" into its keyword and the rest.
func declKeyword(line string) (hir.VarKind, string, bool) {
	word, rest, ok := strings.Cut(line, " ")
	if !ok {
		return 0, "", false
	}
	switch word {
	case "let":
		return hir.VarLocal, rest, true
	case "const":
		return hir.VarConst, rest, true
	case "param":
		return hir.VarParam, rest, true
	}
	return 0, "", false
}

func (s *replSession) declare(kind hir.VarKind, decl string) error {
	name, typ, ok := strings.Cut(decl, ":")
	name = strings.TrimSpace(name)
	typ = strings.TrimSpace(typ)
	if !ok || typ == "" {
		return fmt.Errorf("expected \"<name>: <type>\"")
	}
	if !isIdentifier(name) {
		return fmt.Errorf("%q is not an identifier", name)
	}
	ty, err := s.env.ResolveTypeString(typ)
	if err != nil {
		return err
	}
	s.env.Declare(name, ty, kind)
	return nil
}

func (s *replSession) load(path string) error {
	content, err := os.ReadFile(path) // #nosec G304 -- path typed by the user
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	doc, err := probe.Decode(path, content)
	if err != nil {
		return err
	}
	env, err := probe.BuildEnv(doc)
	if err != nil {
		return err
	}
	s.env = env
	s.ctx = sema.Context{
		Checked:       doc.Options.Checked,
		Unsafe:        doc.Options.Unsafe,
		EnclosingType: env.Enclosing,
	}
	return nil
}

// eval resolves expr and prints its typed tree followed by diagnostics.
func (s *replSession) eval(w io.Writer, expr string) {
	s.inputs++
	id := s.fileSet.AddVirtual(fmt.Sprintf("<input %d>", s.inputs), []byte(expr))
	bag := diag.NewBag(s.maxDiags)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	span := trace.Begin(s.tracer, trace.ScopeCase, "repl.eval", 0)

	var res *hir.Expr
	node, ok := probe.ParseExpr(id, 0, []byte(expr), probe.ParseOptions{
		Reporter:   reporter,
		IsTypeName: s.env.IsTypeName,
	})
	if ok {
		checker := sema.New(sema.Options{
			Types:       s.env.Types,
			Reporter:    reporter,
			Tracer:      s.tracer,
			TraceParent: span.ID(),
		})
		res = probe.NewLowerer(s.env, checker, reporter).Lower(s.ctx, node)
	}
	span.End(expr)

	if res != nil {
		fmt.Fprintf(w, "%s : %s\n", hir.Format(s.env.Types, res), types.Label(s.env.Types, res.Type))
	}
	if bag.Len() > 0 {
		diagfmt.Pretty(w, bag, s.fileSet, diagfmt.PrettyOpts{Color: s.color, ShowNotes: true})
	}
}

func (s *replSession) varNames() []string {
	names := s.env.VarNames()
	sort.Strings(names)
	return names
}

func (s *replSession) listVars(w io.Writer) {
	names := s.varNames()
	if len(names) == 0 {
		fmt.Fprintln(w, "no variables.")
		return
	}
	for _, name := range names {
		v, _ := s.env.Lookup(name)
		fmt.Fprintf(w, "%s: %s\n", name, types.Label(s.env.Types, v.Type))
	}
}

// complete offers variable names for the word under the cursor.
func (s *replSession) complete(line string) []string {
	start := strings.LastIndexFunc(line, func(r rune) bool { return !isIdentRune(r) }) + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range s.varNames() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

func toggle(cur bool, args []string) (bool, error) {
	if len(args) == 0 {
		return !cur, nil
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return cur, fmt.Errorf("expected on or off, got %q", args[0])
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
