package main

import (
	"fmt"
	"io"
	"time"

	"cslice/internal/exportpipeline"
)

func printStageTimings(out io.Writer, timings exportpipeline.Timings) {
	if out == nil {
		return
	}
	if timings.Has(exportpipeline.StageSelect) {
		fmt.Fprintf(out, "selected %.1f ms\n", toMillis(timings.Duration(exportpipeline.StageSelect)))
	}
	if timings.Has(exportpipeline.StageDecompile) {
		fmt.Fprintf(out, "decompiled %.1f ms\n", toMillis(timings.Duration(exportpipeline.StageDecompile)))
	}
	if timings.Has(exportpipeline.StageAggregate) || timings.Has(exportpipeline.StageRender) {
		rendered := timings.Sum(exportpipeline.StageAggregate, exportpipeline.StageRender)
		fmt.Fprintf(out, "rendered %.1f ms\n", toMillis(rendered))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
