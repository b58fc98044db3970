package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"opcheck/internal/diag"
	"opcheck/internal/observ"
	"opcheck/internal/probe"
	"opcheck/internal/source"
	"opcheck/internal/trace"
)

// Options configure a check run.
type Options struct {
	// Jobs bounds the number of files checked at once; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds each case's diagnostics; 0 means 100.
	MaxDiagnostics int
	// Checked and Unsafe override the options of every document when set.
	Checked *bool
	Unsafe  *bool
	Cache   *DiskCache
	// Tracer defaults to the tracer carried by the context.
	Tracer trace.Tracer
	// Progress receives file events from worker goroutines.
	Progress ProgressSink
	// BaseDir is used to render relative paths; empty means the working
	// directory.
	BaseDir string
}

// FileReport is the outcome of one probe file.
type FileReport struct {
	Path   string
	FileID source.FileID
	// Bag holds load and decode problems, case diagnostics and
	// expectation mismatches in case order.
	Bag    *diag.Bag
	Cases  []probe.CaseResult
	Cached bool
	Timing observ.Report
}

// Failed reports files with an error diagnostic.
func (r *FileReport) Failed() bool {
	return r.Bag != nil && r.Bag.HasErrors()
}

// FailedCases counts cases with an error or an unmet expectation.
func (r *FileReport) FailedCases() int {
	n := 0
	for i := range r.Cases {
		if r.Cases[i].Failed() {
			n++
		}
	}
	return n
}

// Result collects every file of a run in path order.
type Result struct {
	FileSet *source.FileSet
	Files   []FileReport
	Timing  observ.Report
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].Failed() {
			return true
		}
	}
	return false
}

// Totals returns case, failed-case and cached-file counts.
func (r *Result) Totals() (cases, failed, cached int) {
	for i := range r.Files {
		f := &r.Files[i]
		cases += len(f.Cases)
		failed += f.FailedCases()
		if f.Cached {
			cached++
		}
	}
	return cases, failed, cached
}

// Check discovers the probe files under paths and checks them in
// parallel. Problems with individual files become diagnostics in their
// report; the returned error is reserved for discovery failures and
// cancellation.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	timer := observ.NewTimer()
	root := trace.Begin(opts.Tracer, trace.ScopeRun, "driver.check", 0)
	defer root.End("")

	done := timer.Track("discover")
	files, err := ListProbeFiles(paths)
	if err != nil {
		done("failed")
		return nil, err
	}
	done(fmt.Sprintf("%d files", len(files)))

	return CheckFiles(ctx, files, opts, timer, root.ID())
}

// CheckFiles checks an explicit file list. timer may be nil.
func CheckFiles(ctx context.Context, files []string, opts Options, timer *observ.Timer, traceParent uint64) (*Result, error) {
	if timer == nil {
		timer = observ.NewTimer()
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	fileSet := source.NewFileSetWithBase(opts.BaseDir)
	result := &Result{FileSet: fileSet, Files: make([]FileReport, len(files))}
	if len(files) == 0 {
		result.Timing = timer.Report()
		return result, nil
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	pass := trace.Begin(opts.Tracer, trace.ScopeRun, "driver.files", traceParent)

	// индексы уникальны для каждой горутины, мьютекс не нужен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			result.Files[i] = checkFile(fileSet, path, opts, pass.ID())
			timer.Merge(result.Files[i].Timing)
			return nil
		})
	}
	err := g.Wait()
	pass.Attr("files", fmt.Sprint(len(files))).End("")
	if err != nil {
		return nil, err
	}
	result.Timing = timer.Report()
	return result, nil
}

func (opts *Options) fingerprint() Fingerprint {
	return Fingerprint{
		Checked:        triState(opts.Checked),
		Unsafe:         triState(opts.Unsafe),
		MaxDiagnostics: opts.MaxDiagnostics,
	}
}

func (opts *Options) maxDiagnostics() int {
	if opts.MaxDiagnostics <= 0 {
		return 100
	}
	return opts.MaxDiagnostics
}

func checkFile(fileSet *source.FileSet, path string, opts Options, traceParent uint64) FileReport {
	started := time.Now()
	timer := observ.NewTimer()
	span := trace.Begin(opts.Tracer, trace.ScopeFile, "driver.file", traceParent).Attr("path", path)
	report := FileReport{Path: path}
	finish := func(stage Stage) FileReport {
		report.Timing = timer.Report()
		status := StatusDone
		if report.Failed() {
			status = StatusError
		}
		emit(opts.Progress, Event{
			File: path, Stage: stage, Status: status,
			Cases: len(report.Cases), Failed: report.FailedCases(),
			Cached: report.Cached, Elapsed: time.Since(started),
		})
		span.End(string(status))
		return report
	}

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	done := timer.Track("load")
	id, err := fileSet.Load(path)
	done("")
	if err != nil {
		report.Bag = diag.NewBag(1)
		report.Bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
		return finish(StageLoad)
	}
	report.FileID = id
	file := fileSet.Get(id)

	key := CacheKey(file.Hash, opts.fingerprint())
	if opts.Cache != nil {
		done = timer.Track("cache")
		var payload CachedFile
		hit, err := opts.Cache.Get(key, &payload)
		done("")
		if err == nil && hit {
			fileDiags, cases := fromCached(fileSet, file, &payload)
			report.Bag = fileBag(opts.maxDiagnostics(), len(cases), fileDiags)
			for i := range cases {
				cases[i].Report(report.Bag)
			}
			report.Cases = cases
			report.Cached = true
			return finish(StageCheck)
		}
	}

	emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	done = timer.Track("decode")
	doc, err := probe.Decode(file.Path, file.Content)
	done("")
	if err != nil {
		report.Bag = diag.NewBag(1)
		report.Bag.Add(diag.New(diag.SevError, diag.IODecodeError, source.Span{File: id}, err.Error()))
		return finish(StageDecode)
	}

	emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	done = timer.Track("check")
	res, err := probe.Run(fileSet, file, doc, probe.RunConfig{
		Checked:        opts.Checked,
		Unsafe:         opts.Unsafe,
		MaxDiagnostics: opts.MaxDiagnostics,
		Tracer:         opts.Tracer,
		TraceParent:    span.ID(),
	})
	done(fmt.Sprintf("%d cases", len(doc.Cases)))

	var fileDiags []diag.Diagnostic
	if err != nil {
		fileDiags = declarationDiagnostics(id, err)
		report.Bag = fileBag(opts.maxDiagnostics(), 0, fileDiags)
	} else {
		report.Bag = res.Bag
		report.Cases = res.Cases
	}

	if opts.Cache != nil {
		done = timer.Track("cache")
		if err := opts.Cache.Put(key, toCached(file.Path, fileDiags, report.Cases, id)); err != nil {
			report.Bag.Add(diag.New(diag.SevWarning, diag.IOCacheError, source.Span{File: id}, "failed to write cache: "+err.Error()))
		}
		done("")
	}
	return finish(StageCheck)
}

func fileBag(maxDiags, cases int, fileDiags []diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(maxDiags*max(1, cases) + len(fileDiags) + 1)
	for _, d := range fileDiags {
		bag.Add(d)
	}
	return bag
}

// declarationDiagnostics reports each problem of a document whose
// declarations do not form a valid environment.
func declarationDiagnostics(file source.FileID, err error) []diag.Diagnostic {
	sp := source.Span{File: file}
	var verr *probe.ValidationError
	if !errors.As(err, &verr) {
		return []diag.Diagnostic{diag.New(diag.SevError, diag.SynBadDeclaration, sp, err.Error())}
	}
	out := make([]diag.Diagnostic, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		out = append(out, diag.New(diag.SevError, diag.SynBadDeclaration, sp, issue))
	}
	return out
}
