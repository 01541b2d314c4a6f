package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cslice/internal/decomp"
	"cslice/internal/exportpipeline"
	"cslice/internal/filter"
	"cslice/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export [snapshot.mp]",
	Short: "Export a self-contained C slice from a program snapshot",
	Long: `Export reads a decompiler program snapshot, selects a subset of its
functions, and writes the smallest C translation unit (or JSON document) that
contains them together with every type, global and prototype they need.`,
	Args: cobra.MaximumNArgs(1),
	RunE: exportExecution,
}

func init() {
	flags := exportCmd.Flags()
	flags.String("out", "", "output base path (default: snapshot name without extension)")
	flags.Bool("no-c", false, "skip the .c artifact")
	flags.Bool("header", false, "also write a .h with types, declarations and externs")
	flags.Bool("json", false, "write a structured JSON document instead of text artifacts")
	flags.Bool("c-comments", false, "use /* */ comments instead of //")
	flags.Bool("types", true, "emit the data types section (incl. equates)")
	flags.Bool("globals", true, "emit the referenced globals section")
	flags.Bool("declarations", true, "emit the function declarations section")
	flags.StringSlice("only", nil, "export only these functions (by exact name)")
	flags.String("addrs", "", "address ranges, e.g. 0x1000-0x2000,0x4010")
	flags.StringSlice("tags", nil, "function tags to filter by")
	flags.Bool("tag-include", false, "keep only tagged functions instead of dropping them")
	flags.Bool("lenient-addrs", false, "skip malformed address ranges instead of failing")
	flags.Bool("strict-conflicts", false, "fail on conflicting symbol declarations")
	flags.Int("jobs", 0, "parallel decompile workers (0 = all CPUs)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
}

func exportExecution(cmd *cobra.Command, args []string) error {
	snapPath, manifest, err := resolveSnapshotPath(args)
	if err != nil {
		return err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	configureColor(colorMode)

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	req.MaxDiagnostics = maxDiagnostics

	outBase, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outBase == "" && manifest != nil && manifest.Config.Export.Out != "" {
		outBase = filepath.Join(manifest.Root, filepath.FromSlash(manifest.Config.Export.Out))
	}
	if outBase == "" {
		outBase = strings.TrimSuffix(snapPath, filepath.Ext(snapPath))
	}
	req.Render.HeaderName = filepath.Base(outBase) + ".h"

	prov, err := decomp.Load(snapPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var res *exportpipeline.Result
	var exportErr error
	if shouldUseTUI(mode) && !quiet && !req.Document {
		universe, listErr := prov.ListFunctions(cmd.Context())
		if listErr != nil {
			return listErr
		}
		selected, selErr := filter.Select(universe, req.Filter, nil)
		if selErr == nil {
			names := make([]string, 0, len(selected))
			for _, fn := range selected {
				names = append(names, fn.Name)
			}
			title := fmt.Sprintf("exporting %s", prov.ProgramName())
			res, exportErr = runExportWithUI(cmd.Context(), title, names, prov, req)
		} else {
			res, exportErr = exportpipeline.Export(cmd.Context(), prov, req)
		}
	} else {
		res, exportErr = exportpipeline.Export(cmd.Context(), prov, req)
	}

	if res != nil {
		printDiagnostics(cmd.ErrOrStderr(), res.Bag, quiet)
	}
	if exportErr != nil {
		return exportErr
	}

	if err := writeArtifacts(outBase, res, req); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d of %d selected functions from %s\n",
			res.Decompiled, res.Selected, prov.ProgramName())
	}
	if timings {
		printStageTimings(cmd.OutOrStdout(), res.Timings)
	}
	return nil
}

func requestFromFlags(cmd *cobra.Command) (*exportpipeline.Request, error) {
	flags := cmd.Flags()

	noC, err := flags.GetBool("no-c")
	if err != nil {
		return nil, err
	}
	header, err := flags.GetBool("header")
	if err != nil {
		return nil, err
	}
	jsonDoc, err := flags.GetBool("json")
	if err != nil {
		return nil, err
	}
	cComments, err := flags.GetBool("c-comments")
	if err != nil {
		return nil, err
	}
	emitTypes, err := flags.GetBool("types")
	if err != nil {
		return nil, err
	}
	emitGlobals, err := flags.GetBool("globals")
	if err != nil {
		return nil, err
	}
	emitDecls, err := flags.GetBool("declarations")
	if err != nil {
		return nil, err
	}
	only, err := flags.GetStringSlice("only")
	if err != nil {
		return nil, err
	}
	addrs, err := flags.GetString("addrs")
	if err != nil {
		return nil, err
	}
	tags, err := flags.GetStringSlice("tags")
	if err != nil {
		return nil, err
	}
	tagInclude, err := flags.GetBool("tag-include")
	if err != nil {
		return nil, err
	}
	lenient, err := flags.GetBool("lenient-addrs")
	if err != nil {
		return nil, err
	}
	strict, err := flags.GetBool("strict-conflicts")
	if err != nil {
		return nil, err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return nil, err
	}

	var ranges []string
	for _, part := range strings.Split(addrs, ",") {
		if strings.TrimSpace(part) != "" {
			ranges = append(ranges, strings.TrimSpace(part))
		}
	}

	req := &exportpipeline.Request{
		Filter: filter.Config{
			Names:         only,
			AddressRanges: ranges,
			Tags:          tags,
			TagExclude:    !tagInclude,
			LenientRanges: lenient,
		},
		Render: render.Options{
			CFile:            !noC && !jsonDoc,
			Header:           header,
			CppComments:      !cComments,
			EmitTypes:        emitTypes,
			EmitGlobals:      emitGlobals,
			EmitDeclarations: emitDecls,
		},
		Document:        jsonDoc,
		StrictConflicts: strict,
		Jobs:            jobs,
	}
	return req, nil
}

func writeArtifacts(outBase string, res *exportpipeline.Result, req *exportpipeline.Request) error {
	if dir := filepath.Dir(outBase); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if req.Document {
		return os.WriteFile(outBase+".json", res.Document, 0o644)
	}
	if res.Header != nil {
		if err := os.WriteFile(outBase+".h", res.Header, 0o644); err != nil {
			return err
		}
	}
	if res.Primary != nil {
		if err := os.WriteFile(outBase+".c", res.Primary, 0o644); err != nil {
			return err
		}
	}
	return nil
}
