// Package exportpipeline orchestrates one export run: select the functions,
// decompile them in parallel, aggregate the closures, render the artifacts.
// Stages only ever move forward; per-function failures are absorbed into the
// diagnostic bag while configuration errors and a fully failed decompile
// abort the run.
package exportpipeline

import (
	"context"
	"fmt"

	"cslice/internal/aggregate"
	"cslice/internal/decomp"
	"cslice/internal/diag"
	"cslice/internal/filter"
	"cslice/internal/observ"
	"cslice/internal/render"
)

// Request configures one export run.
type Request struct {
	Filter filter.Config
	Render render.Options
	// Document switches to structured JSON output. Mutually exclusive with
	// the text artifacts in Render.
	Document        bool
	StrictConflicts bool
	// Jobs bounds the decompile fan-out; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the bag. 0 picks a sensible default.
	MaxDiagnostics int
	Sink           ProgressSink
}

// Result carries the run's artifacts and bookkeeping.
type Result struct {
	Primary  []byte
	Header   []byte
	Document []byte

	Selected   int
	Decompiled int

	Bag     *diag.Bag
	Timings Timings
	Timer   observ.Report
}

const defaultMaxDiagnostics = 256

// Export runs the pipeline against one provider.
func Export(ctx context.Context, prov decomp.Provider, req *Request) (*Result, error) {
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiag)
	rep := diag.BagReporter{Bag: bag}
	sink := req.Sink
	if sink == nil {
		sink = NopSink{}
	}
	res := &Result{Bag: bag}
	timer := observ.NewTimer()

	if err := validate(req, rep); err != nil {
		return res, err
	}

	// Select.
	sink.OnEvent(Event{Stage: StageSelect, Status: StatusWorking})
	phase := timer.Begin(string(StageSelect))
	universe, err := prov.ListFunctions(ctx)
	if err != nil {
		return res, fmt.Errorf("list functions: %w", err)
	}
	selected, err := filter.Select(universe, req.Filter, rep)
	timer.End(phase, fmt.Sprintf("%d of %d functions", len(selected), len(universe)))
	res.Timings.Set(StageSelect, timer.PhaseDuration(phase))
	if err != nil {
		sink.OnEvent(Event{Stage: StageSelect, Status: StatusError, Err: err})
		return res, err
	}
	res.Selected = len(selected)
	sink.OnEvent(Event{Stage: StageSelect, Status: StatusDone})

	// Decompile.
	sink.OnEvent(Event{Stage: StageDecompile, Status: StatusWorking})
	phase = timer.Begin(string(StageDecompile))
	results, err := decompileAll(ctx, prov, selected, req.Jobs, sink)
	timer.End(phase, "")
	res.Timings.Set(StageDecompile, timer.PhaseDuration(phase))
	if err != nil {
		sink.OnEvent(Event{Stage: StageDecompile, Status: StatusError, Err: err})
		return res, fmt.Errorf("decompile: %w", err)
	}
	decompiled := 0
	for _, r := range results {
		if r.Err == nil {
			decompiled++
		} else {
			diag.Warn(rep, diag.DecompFailed, r.Info.Name, r.Err.Error())
		}
	}
	res.Decompiled = decompiled
	if len(selected) > 0 && decompiled == 0 {
		diag.Error(rep, diag.DecompNoFunctions, prov.ProgramName(),
			"every selected function failed to decompile")
		sink.OnEvent(Event{Stage: StageDecompile, Status: StatusError})
		return res, fmt.Errorf("no function decompiled successfully")
	}
	sink.OnEvent(Event{Stage: StageDecompile, Status: StatusDone})

	// Aggregate.
	sink.OnEvent(Event{Stage: StageAggregate, Status: StatusWorking})
	phase = timer.Begin(string(StageAggregate))
	model := aggregate.Build(prov.ProgramName(), prov.Types(), results, equatesOf(ctx, prov, rep),
		aggregate.Options{StrictConflicts: req.StrictConflicts}, rep)
	timer.End(phase, "")
	res.Timings.Set(StageAggregate, timer.PhaseDuration(phase))
	if req.StrictConflicts && bag.HasErrors() {
		sink.OnEvent(Event{Stage: StageAggregate, Status: StatusError})
		return res, fmt.Errorf("conflicting symbol declarations")
	}
	sink.OnEvent(Event{Stage: StageAggregate, Status: StatusDone})

	// Render.
	sink.OnEvent(Event{Stage: StageRender, Status: StatusWorking})
	phase = timer.Begin(string(StageRender))
	if req.Document {
		doc := render.BuildDocument(model, req.Render)
		res.Document, err = doc.Encode()
	} else {
		var arts render.Artifacts
		arts, err = render.Render(model, req.Render)
		res.Primary, res.Header = arts.Primary, arts.Header
	}
	timer.End(phase, "")
	res.Timings.Set(StageRender, timer.PhaseDuration(phase))
	if err != nil {
		sink.OnEvent(Event{Stage: StageRender, Status: StatusError, Err: err})
		return res, err
	}
	sink.OnEvent(Event{Stage: StageRender, Status: StatusDone})

	res.Timer = timer.Report()
	return res, nil
}

func validate(req *Request, rep diag.Reporter) error {
	wantsText := req.Render.CFile || req.Render.Header
	if req.Document && wantsText {
		diag.Error(rep, diag.CfgExclusiveOutputs, "--json",
			"structured document mode excludes the C and header artifacts")
		return fmt.Errorf("document mode excludes text artifacts")
	}
	if !req.Document && !wantsText {
		diag.Error(rep, diag.CfgNoOutputArtifact, "--out",
			"nothing to produce: enable the C file, the header, or document mode")
		return fmt.Errorf("no output artifact requested")
	}
	return nil
}

func equatesOf(ctx context.Context, prov decomp.Provider, rep diag.Reporter) []decomp.Equate {
	eqs, err := prov.Equates(ctx)
	if err != nil {
		diag.Warn(rep, diag.DecompBadSnapshot, prov.ProgramName(),
			"could not read equates: "+err.Error())
		return nil
	}
	return eqs
}
