package filter

import (
	"testing"

	"cslice/internal/decomp"
	"cslice/internal/diag"
)

func universe() []decomp.FunctionInfo {
	return []decomp.FunctionInfo{
		{ID: 0x401000, Name: "main"},
		{ID: 0x401200, Name: "helper", Tags: []string{"LIBRARY"}},
		{ID: 0x402000, Name: "init", Tags: []string{"CORE"}},
		{ID: 0x403000, Name: "teardown"},
	}
}

func report(t *testing.T) (*diag.Bag, diag.Reporter) {
	t.Helper()
	bag := diag.NewBag(16)
	return bag, diag.BagReporter{Bag: bag}
}

func TestSelectNoCriteriaKeepsEverything(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{TagExclude: true}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected whole universe, got %d", len(got))
	}
}

func TestSelectByName(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{Names: []string{"init", "main"}}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].Name != "main" || got[1].Name != "init" {
		t.Fatalf("name selection must keep discovery order, got %+v", got)
	}
}

func TestSelectByAddressRange(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{AddressRanges: []string{"0x401000-0x401fff", "403000"}}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(got))
	}
	if got[2].Name != "teardown" {
		t.Fatalf("single-address range should match exactly, got %+v", got)
	}
}

func TestSelectBadRangeFailsClosed(t *testing.T) {
	bag, rep := report(t)
	_, err := Select(universe(), Config{AddressRanges: []string{"0x401000-zzz"}}, rep)
	if err == nil {
		t.Fatalf("malformed range must be fatal by default")
	}
	if !bag.HasErrors() {
		t.Fatalf("expected an error diagnostic")
	}
}

func TestSelectBadRangeLenientWarnsAndSkips(t *testing.T) {
	bag, rep := report(t)
	got, err := Select(universe(), Config{
		AddressRanges: []string{"0x401000-zzz", "0x402000"},
		LenientRanges: true,
	}, rep)
	if err != nil {
		t.Fatalf("lenient mode must not fail: %v", err)
	}
	if len(got) != 1 || got[0].Name != "init" {
		t.Fatalf("only the valid range should apply, got %+v", got)
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("expected warning only, bag: %v", bag.Items())
	}
}

func TestSelectTagExcludeDropsTagged(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{Tags: []string{"LIBRARY"}, TagExclude: true}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, fn := range got {
		if fn.Name == "helper" {
			t.Fatalf("tagged function must be excluded")
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(got))
	}
}

func TestSelectTagIncludeKeepsOnlyTagged(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{Tags: []string{"LIBRARY", "CORE"}}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].Name != "helper" || got[1].Name != "init" {
		t.Fatalf("include mode keeps only tagged functions, got %+v", got)
	}
}

func TestSelectCriteriaIntersect(t *testing.T) {
	_, rep := report(t)
	got, err := Select(universe(), Config{
		Names:         []string{"main", "helper"},
		AddressRanges: []string{"0x401100-0x401fff"},
	}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "helper" {
		t.Fatalf("criteria must intersect, got %+v", got)
	}
}

func TestSelectUnknownNameWarned(t *testing.T) {
	bag, rep := report(t)
	got, err := Select(universe(), Config{Names: []string{"main", "mian"}}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "main" {
		t.Fatalf("known name should still select, got %+v", got)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SelUnknownName && d.Subject == "mian" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an unknown-name warning for %q, bag: %v", "mian", bag.Items())
	}
}

func TestSelectEmptyResultReported(t *testing.T) {
	bag, rep := report(t)
	got, err := Select(universe(), Config{Names: []string{"nothing_here"}}, rep)
	if err != nil {
		t.Fatalf("empty result must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty selection, got %+v", got)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.SelEmptyResult && d.Severity == diag.SevInfo {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an empty-result info diagnostic, bag: %v", bag.Items())
	}
}

func TestSelectEmptyNameEntryWarned(t *testing.T) {
	bag, rep := report(t)
	got, err := Select(universe(), Config{Names: []string{"", "main"}}, rep)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 || got[0].Name != "main" {
		t.Fatalf("blank entry should be ignored, got %+v", got)
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected a warning for the blank entry")
	}
}
