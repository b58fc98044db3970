package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerTrack(t *testing.T) {
	timer := NewTimer()
	done := timer.Track("decode")
	time.Sleep(time.Millisecond)
	done("2 cases")

	report := timer.Report()
	p, ok := report.Phase("decode")
	if !ok {
		t.Fatal("decode phase missing")
	}
	if p.DurationMS <= 0 || p.Note != "2 cases" {
		t.Fatalf("phase = %+v", p)
	}
	if report.TotalMS != p.DurationMS {
		t.Fatalf("total %v != phase %v", report.TotalMS, p.DurationMS)
	}
}

func TestTimerEndIgnoresBadIndex(t *testing.T) {
	timer := NewTimer()
	timer.End(3, "nope")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("phases = %+v", got.Phases)
	}
}

func TestTimerMergeSumsByName(t *testing.T) {
	run := NewTimer()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.Merge(Report{Phases: []PhaseReport{
				{Name: "load", DurationMS: 1.5},
				{Name: "check", DurationMS: 2, Note: "x"},
			}})
		}()
	}
	wg.Wait()

	report := run.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	load, _ := report.Phase("load")
	check, _ := report.Phase("check")
	if load.DurationMS != 6 || check.DurationMS != 8 {
		t.Fatalf("load=%v check=%v", load.DurationMS, check.DurationMS)
	}
	if report.TotalMS != 14 {
		t.Fatalf("total = %v", report.TotalMS)
	}
}

func TestReportString(t *testing.T) {
	r := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "check", DurationMS: 3, Note: "1 file"}}}
	out := r.String()
	for _, want := range []string{"timings:", "check", "3.00 ms", "// 1 file", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q lacks %q", out, want)
		}
	}
}
