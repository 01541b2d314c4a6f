package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cslice/internal/decomp"
	"cslice/internal/exportpipeline"
	"cslice/internal/ui"
)

type exportOutcome struct {
	result *exportpipeline.Result
	err    error
}

func runExportWithUI(ctx context.Context, title string, functions []string, prov decomp.Provider, req *exportpipeline.Request) (*exportpipeline.Result, error) {
	events := make(chan exportpipeline.Event, 256)
	outcomeCh := make(chan exportOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Sink = exportpipeline.ChannelSink{Ch: events}
		res, err := exportpipeline.Export(ctx, prov, &reqCopy)
		outcomeCh <- exportOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, functions, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
