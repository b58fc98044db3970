package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"opcheck/internal/diagfmt"
	"opcheck/internal/driver"
	"opcheck/internal/observ"
	"opcheck/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Check probe files",
	Long: `Check resolves every case of the probe files (*.toml, *.yaml, *.yml) found
under the given paths, prints the diagnostics and reports cases whose
expected type, tree or diagnostics do not match.`,
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
}

func addCheckFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("format", "pretty", "output format (pretty|short|json)")
	flags.Bool("emit-tree", false, "print the typed tree of every case")
	flags.Int("jobs", 0, "max parallel workers (0=auto)")
	flags.Bool("checked", false, "force checked arithmetic for every case")
	flags.Bool("unsafe", false, "force unsafe context for every case")
	flags.Bool("cache", false, "reuse per-file results from the disk cache")
	flags.Bool("drop-cache", false, "clear the disk cache before checking")
	flags.String("ui", "auto", "progress view (auto|on|off)")
	flags.Bool("with-notes", false, "include diagnostic notes in output")
	flags.String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
}

// checkConfig is the merged view of flags and opcheck.toml.
type checkConfig struct {
	format    string
	emitTree  bool
	withNotes bool
	pathMode  diagfmt.PathMode
	ui        uiMode
	quiet     bool
	timings   bool
	color     bool
	cache     bool
	dropCache bool
	opts      driver.Options
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	tracer, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	failed := true
	defer func() { cleanup(failed) }()

	manifest, _, err := loadProjectManifest(paths[0])
	if err != nil {
		return err
	}
	cfg, err := readCheckConfig(cmd, manifest)
	if err != nil {
		return err
	}

	if cfg.cache || cfg.dropCache {
		cache, err := driver.OpenDiskCache("opcheck")
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: disk cache disabled: %v\n", err)
		} else {
			if cfg.dropCache {
				if err := cache.DropAll(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
			}
			if cfg.cache {
				cfg.opts.Cache = cache
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	timer := observ.NewTimer()
	root := trace.Begin(tracer, trace.ScopeRun, "opcheck.check", 0)
	done := timer.Track("discover")
	files, err := driver.ListProbeFiles(paths)
	if err != nil {
		done("failed")
		root.End("error")
		return err
	}
	done(fmt.Sprintf("%d files", len(files)))
	if len(files) == 0 {
		root.End("empty")
		return fmt.Errorf("no probe files found in %s", strings.Join(paths, ", "))
	}

	var res *driver.Result
	if shouldUseTUI(cfg.ui, len(files), cfg.format) {
		res, err = runCheckWithUI(ctx, "opcheck check", files, cfg.opts, timer, root.ID())
	} else {
		res, err = driver.CheckFiles(ctx, files, cfg.opts, timer, root.ID())
	}
	root.End("")
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := renderCheck(cmd.OutOrStdout(), res, cfg); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if !cfg.quiet && cfg.format != "json" {
		fmt.Fprintln(cmd.ErrOrStderr(), summaryLine(res))
	}
	if cfg.timings {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timing.String())
	}
	if res.HasErrors() {
		return errSilent
	}
	failed = false
	return nil
}

// readCheckConfig merges flags over the manifest. Flags win only when
// set explicitly.
func readCheckConfig(cmd *cobra.Command, manifest *projectManifest) (checkConfig, error) {
	var cfg checkConfig
	var settings checkSettings
	if manifest != nil {
		settings = manifest.Check
	}
	flags := cmd.Flags()

	format, err := flags.GetString("format")
	if err != nil {
		return cfg, fmt.Errorf("failed to get format flag: %w", err)
	}
	if !flags.Changed("format") && settings.Format != "" {
		format = settings.Format
	}
	cfg.format = strings.ToLower(strings.TrimSpace(format))
	if !validFormat(cfg.format) {
		return cfg, fmt.Errorf("unknown format: %s", format)
	}

	if cfg.emitTree, err = flags.GetBool("emit-tree"); err != nil {
		return cfg, fmt.Errorf("failed to get emit-tree flag: %w", err)
	}
	if cfg.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return cfg, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if cfg.dropCache, err = flags.GetBool("drop-cache"); err != nil {
		return cfg, fmt.Errorf("failed to get drop-cache flag: %w", err)
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return cfg, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if cfg.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return cfg, fmt.Errorf("invalid --path-mode value %q", pathMode)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return cfg, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if cfg.ui, err = readUIMode(uiValue); err != nil {
		return cfg, err
	}

	if cfg.quiet, err = flags.GetBool("quiet"); err != nil {
		return cfg, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if cfg.timings, err = flags.GetBool("timings"); err != nil {
		return cfg, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if cfg.color, err = resolveColor(cmd); err != nil {
		return cfg, err
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return cfg, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !flags.Changed("jobs") && settings.Jobs != nil {
		jobs = *settings.Jobs
	}
	if jobs < 0 {
		return cfg, fmt.Errorf("--jobs must not be negative")
	}
	cfg.opts.Jobs = jobs

	maxDiags, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return cfg, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && settings.MaxDiagnostics != nil {
		maxDiags = *settings.MaxDiagnostics
	}
	cfg.opts.MaxDiagnostics = maxDiags

	if cfg.opts.Checked, err = boolOverride(cmd, "checked", settings.Checked); err != nil {
		return cfg, err
	}
	if cfg.opts.Unsafe, err = boolOverride(cmd, "unsafe", settings.Unsafe); err != nil {
		return cfg, err
	}
	cache, err := boolOverride(cmd, "cache", settings.Cache)
	if err != nil {
		return cfg, err
	}
	cfg.cache = cache != nil && *cache
	return cfg, nil
}

// boolOverride returns the flag value when set, otherwise the manifest
// value, otherwise nil.
func boolOverride(cmd *cobra.Command, name string, fromManifest *bool) (*bool, error) {
	if !cmd.Flags().Changed(name) {
		return fromManifest, nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s flag: %w", name, err)
	}
	return &v, nil
}

type checkReportJSON struct {
	Files  []diagfmt.FileJSON `json:"files"`
	Cases  int                `json:"cases"`
	Failed int                `json:"failed"`
	Cached int                `json:"cached"`
}

// renderCheck writes the report of res in cfg.format.
func renderCheck(w io.Writer, res *driver.Result, cfg checkConfig) error {
	switch cfg.format {
	case "json":
		return diagfmt.Encode(w, buildCheckJSON(res, cfg))
	case "short":
		for i := range res.Files {
			f := &res.Files[i]
			if cfg.emitTree {
				writeTrees(w, f)
			}
			if err := diagfmt.Short(w, f.Bag, res.FileSet, cfg.withNotes); err != nil {
				return err
			}
		}
		return nil
	default:
		opts := diagfmt.PrettyOpts{
			Color:     cfg.color,
			Context:   1,
			PathMode:  cfg.pathMode,
			ShowNotes: cfg.withNotes,
		}
		first := true
		for i := range res.Files {
			f := &res.Files[i]
			if cfg.emitTree {
				writeTrees(w, f)
			}
			if f.Bag == nil || f.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			diagfmt.Pretty(w, f.Bag, res.FileSet, opts)
		}
		return nil
	}
}

func writeTrees(w io.Writer, f *driver.FileReport) {
	fmt.Fprintf(w, "== %s\n", f.Path)
	for i := range f.Cases {
		c := &f.Cases[i]
		if c.Tree == "" {
			fmt.Fprintf(w, "  %s: <error>\n", c.Name)
			continue
		}
		fmt.Fprintf(w, "  %s: %s : %s\n", c.Name, c.Tree, c.Type)
	}
}

func buildCheckJSON(res *driver.Result, cfg checkConfig) checkReportJSON {
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         cfg.pathMode,
		IncludeNotes:     cfg.withNotes,
	}
	out := checkReportJSON{Files: make([]diagfmt.FileJSON, 0, len(res.Files))}
	out.Cases, out.Failed, out.Cached = res.Totals()
	for i := range res.Files {
		f := &res.Files[i]
		fj := diagfmt.FileJSON{
			Path:   f.Path,
			Cached: f.Cached,
			Cases:  make([]diagfmt.CaseJSON, 0, len(f.Cases)),
		}
		for j := range f.Cases {
			c := &f.Cases[j]
			fj.Cases = append(fj.Cases, diagfmt.CaseJSON{
				Name:       c.Name,
				Expr:       c.Expr,
				Type:       c.Type,
				Tree:       c.Tree,
				Failed:     c.Failed(),
				Mismatches: c.Mismatches,
			})
		}
		if f.Bag != nil {
			fj.Diagnostics = diagfmt.BuildDiagnostics(f.Bag.Items(), res.FileSet, jsonOpts)
		} else {
			fj.Diagnostics = []diagfmt.DiagnosticJSON{}
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

func summaryLine(res *driver.Result) string {
	cases, failed, cached := res.Totals()
	line := fmt.Sprintf("checked %d %s, %d %s", len(res.Files), plural(len(res.Files), "file"), cases, plural(cases, "case"))
	if failed > 0 {
		line += fmt.Sprintf(", %d failed", failed)
	}
	if broken := brokenFiles(res); broken > 0 {
		line += fmt.Sprintf(", %d %s with errors", broken, plural(broken, "file"))
	}
	if cached > 0 {
		line += fmt.Sprintf(" (%d cached)", cached)
	}
	return line
}

// brokenFiles counts files that failed without a failing case, such as
// unreadable or undecodable ones.
func brokenFiles(res *driver.Result) int {
	n := 0
	for i := range res.Files {
		f := &res.Files[i]
		if f.Failed() && f.FailedCases() == 0 {
			n++
		}
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
