package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"cslice/internal/diag"
)

func configureColor(mode string) {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stderr)
	}
}

// printDiagnostics writes the bag to out, sorted and deduplicated, errors
// first in red, warnings in yellow.
func printDiagnostics(out io.Writer, bag *diag.Bag, quiet bool) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	bag.Dedup()
	bag.Sort()

	errColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow)

	for _, d := range bag.Items() {
		if quiet && d.Severity < diag.SevError {
			continue
		}
		paint := warnColor
		switch {
		case d.Severity >= diag.SevError:
			paint = errColor
		case d.Severity == diag.SevInfo:
			paint = color.New(color.FgCyan)
		}
		label := strings.ToLower(d.Severity.String())
		fmt.Fprintf(out, "%s %s\n", paint.Sprint(label), diag.Detail(d))
	}
}
