package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"volt/internal/driver"
	"volt/internal/ui"
)

type checkOutcome struct {
	result *driver.Result
	err    error
}

// runCheckWithUI runs the driver in the background while a Bubble Tea
// program renders its progress events. Канал событий закрывается после
// завершения драйвера, что и останавливает интерфейс.
func runCheckWithUI(ctx context.Context, title string, files []string, path string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Progress, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = func(ev driver.Progress) {
			events <- ev
		}
		res, err := driver.Check(ctx, path, optsCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
