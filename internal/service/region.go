package service

import (
	"fmt"
	"sort"
	"strings"

	"nsn-odds-data/internal/apierr"
)

// RegionFilter restricts bookmakers to those licensed in a region.
type RegionFilter struct {
	regions map[string][]string
	allowed map[string]map[string]struct{}
}

func NewRegionFilter(regions map[string][]string) *RegionFilter {
	f := &RegionFilter{
		regions: make(map[string][]string, len(regions)),
		allowed: make(map[string]map[string]struct{}, len(regions)),
	}
	for code, bookmakers := range regions {
		code = normalizeKey(code)
		set := make(map[string]struct{}, len(bookmakers))
		for _, bm := range bookmakers {
			set[normalizeKey(bm)] = struct{}{}
		}
		f.regions[code] = bookmakers
		f.allowed[code] = set
	}
	return f
}

// Regions lists the configured region codes in sorted order.
func (f *RegionFilter) Regions() []string {
	codes := make([]string, 0, len(f.regions))
	for code := range f.regions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// AllowedBookmakers returns the bookmakers for region. Unknown regions are a
// 422 validation error.
func (f *RegionFilter) AllowedBookmakers(region string) ([]string, error) {
	list, ok := f.regions[normalizeKey(region)]
	if !ok {
		return nil, apierr.Unprocessable(fmt.Sprintf("Unknown region: %s. Supported: %q", region, f.Regions()))
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

// BookmakersForRegion returns the bookmakers to query for region. With no
// request it is the full allowed list; otherwise every requested bookmaker
// must be allowed in the region.
func (f *RegionFilter) BookmakersForRegion(region string, requested []string) ([]string, error) {
	allowed, err := f.AllowedBookmakers(region)
	if err != nil {
		return nil, err
	}
	requested = normalizeList(requested)
	if len(requested) == 0 {
		return allowed, nil
	}

	var invalid []string
	for _, bm := range requested {
		if !f.Allows(region, bm) {
			invalid = append(invalid, bm)
		}
	}
	if len(invalid) > 0 {
		return nil, apierr.Validation(fmt.Sprintf(
			"Bookmakers not available in region '%s': %q. Allowed: %q", normalizeKey(region), invalid, allowed))
	}
	return requested, nil
}

func (f *RegionFilter) ValidateBookmakerAccess(bookmaker, region string) error {
	allowed, err := f.AllowedBookmakers(region)
	if err != nil {
		return err
	}
	if !f.Allows(region, bookmaker) {
		return apierr.Validation(fmt.Sprintf(
			"Bookmaker '%s' not available in region '%s'. Allowed: %q", bookmaker, normalizeKey(region), allowed))
	}
	return nil
}

// Allows reports whether bookmaker is licensed in region. Unknown regions allow nothing.
func (f *RegionFilter) Allows(region, bookmaker string) bool {
	_, ok := f.allowed[normalizeKey(region)][normalizeKey(bookmaker)]
	return ok
}

// FilterBookmakers keeps the items whose key is allowed in region.
func FilterBookmakers[T any](f *RegionFilter, items []T, region string, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Allows(region, key(item)) {
			out = append(out, item)
		}
	}
	return out
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeList(items []string) []string {
	var out []string
	for _, item := range items {
		if k := normalizeKey(item); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// SplitCSV splits a comma separated query value, dropping blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
