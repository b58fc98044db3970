package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"opcheck/internal/driver"
	"opcheck/internal/observ"
	"opcheck/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI checks files while a Bubble Tea program renders their
// progress. The driver runs in its own goroutine and closes the event
// channel when it returns, which ends the program.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options, timer *observ.Timer, traceParent uint64) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, files, optsCopy, timer, traceParent)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// дренируем события, если программа завершилась раньше драйвера
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
