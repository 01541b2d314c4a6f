// Package filter narrows the program's function universe to the selected set.
// Criteria combine by intersection; a criterion with no entries is inactive.
// Selection never reorders: the result keeps the universe's discovery order.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"cslice/internal/decomp"
	"cslice/internal/diag"
)

// Config holds the selection criteria for one export run.
type Config struct {
	// Names selects functions by exact name match.
	Names []string
	// AddressRanges selects functions whose entry address falls inside any
	// range. Each entry is "lo-hi" or a single address, hex with an optional
	// 0x prefix.
	AddressRanges []string
	// Tags filters by function tag. With TagExclude set (the default mode)
	// a function carrying any listed tag is dropped; otherwise only
	// functions carrying at least one listed tag are kept.
	Tags       []string
	TagExclude bool
	// LenientRanges downgrades malformed address ranges from a fatal error
	// to a warning that skips the entry.
	LenientRanges bool
}

type addrRange struct {
	lo, hi uint64
}

func (r addrRange) contains(a uint64) bool { return a >= r.lo && a <= r.hi }

func parseAddr(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	return strconv.ParseUint(s, 16, 64)
}

func parseRange(s string) (addrRange, error) {
	lo, hi, found := strings.Cut(s, "-")
	start, err := parseAddr(lo)
	if err != nil {
		return addrRange{}, fmt.Errorf("bad address %q: %w", lo, err)
	}
	if !found {
		return addrRange{lo: start, hi: start}, nil
	}
	end, err := parseAddr(hi)
	if err != nil {
		return addrRange{}, fmt.Errorf("bad address %q: %w", hi, err)
	}
	if end < start {
		return addrRange{}, fmt.Errorf("range %q ends before it starts", s)
	}
	return addrRange{lo: start, hi: end}, nil
}

// Select applies cfg to the universe and returns the selected functions in
// discovery order. An empty result is not an error; a malformed address range
// is, unless cfg.LenientRanges downgrades it.
func Select(universe []decomp.FunctionInfo, cfg Config, rep diag.Reporter) ([]decomp.FunctionInfo, error) {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	names := make(map[string]struct{}, len(cfg.Names))
	for _, n := range cfg.Names {
		if strings.TrimSpace(n) == "" {
			rep.Report(diag.CfgEmptyNameFilter, diag.SevWarning, "--name",
				"empty name filter entry ignored")
			continue
		}
		names[n] = struct{}{}
	}

	var ranges []addrRange
	for _, raw := range cfg.AddressRanges {
		r, err := parseRange(raw)
		if err != nil {
			if cfg.LenientRanges {
				rep.Report(diag.CfgBadAddressRange, diag.SevWarning, raw,
					fmt.Sprintf("skipping malformed address range: %v", err))
				continue
			}
			rep.Report(diag.CfgBadAddressRange, diag.SevError, raw,
				fmt.Sprintf("malformed address range: %v", err))
			return nil, fmt.Errorf("address range %q: %w", raw, err)
		}
		ranges = append(ranges, r)
	}
	// In lenient mode a fully malformed range list degrades to "no address
	// constraint" rather than selecting nothing.
	rangesActive := len(ranges) > 0

	tags := make(map[string]struct{}, len(cfg.Tags))
	for _, t := range cfg.Tags {
		tags[t] = struct{}{}
	}

	known := make(map[string]struct{}, len(universe))
	for _, fn := range universe {
		known[fn.Name] = struct{}{}
	}

	var selected []decomp.FunctionInfo
	for _, fn := range universe {
		if len(names) > 0 {
			if _, ok := names[fn.Name]; !ok {
				continue
			}
		}
		if rangesActive && !inAnyRange(ranges, uint64(fn.ID)) {
			continue
		}
		if len(tags) > 0 && !passesTags(fn.Tags, tags, cfg.TagExclude) {
			continue
		}
		selected = append(selected, fn)
	}

	// Name filters that match nothing are almost always typos; point them out.
	warned := make(map[string]struct{})
	for _, n := range cfg.Names {
		if _, active := names[n]; !active {
			continue
		}
		if _, ok := known[n]; ok {
			continue
		}
		if _, dup := warned[n]; dup {
			continue
		}
		warned[n] = struct{}{}
		rep.Report(diag.SelUnknownName, diag.SevWarning, n,
			"no function with this name in the program")
	}
	if len(selected) == 0 && len(universe) > 0 {
		rep.Report(diag.SelEmptyResult, diag.SevInfo, "selection",
			fmt.Sprintf("criteria matched none of the %d functions", len(universe)))
	}
	return selected, nil
}

func inAnyRange(ranges []addrRange, addr uint64) bool {
	for _, r := range ranges {
		if r.contains(addr) {
			return true
		}
	}
	return false
}

func passesTags(funcTags []string, filter map[string]struct{}, exclude bool) bool {
	tagged := false
	for _, t := range funcTags {
		if _, ok := filter[t]; ok {
			tagged = true
			break
		}
	}
	if exclude {
		return !tagged
	}
	return tagged
}
