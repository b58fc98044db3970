package driver

import "time"

// Stage is a step of checking one probe file.
type Stage string

const (
	StageLoad   Stage = "load"
	StageDecode Stage = "decode"
	StageCheck  Stage = "check"
)

// Status reports where a file stands within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusError indicates the file could not be checked or a case failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is
// empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Cases   int
	Failed  int
	Cached  bool
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Check calls it from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
