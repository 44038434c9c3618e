package refdata

import (
	"fmt"
	"strings"
)

const (
	maxEntriesPerList = 10000
	maxLabelLength    = 200
)

// validateLabel checks a single name, alias or keyword
func validateLabel(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", kind)
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s %q has leading/trailing whitespace", kind, value)
	}
	if len(value) > maxLabelLength {
		return fmt.Errorf("%s length %d exceeds maximum of %d characters", kind, len(value), maxLabelLength)
	}
	return nil
}

// validateList checks list size limits and duplicate labels. Duplicates are
// detected after case folding so "Iran" and "IRAN" collide.
func validateList(kind string, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("%s list cannot be empty", kind)
	}
	if len(labels) > maxEntriesPerList {
		return fmt.Errorf("%s list contains %d entries, maximum allowed is %d", kind, len(labels), maxEntriesPerList)
	}

	seen := make(map[string]bool, len(labels))
	for i, label := range labels {
		if err := validateLabel(kind, label); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		key := strings.ToLower(label)
		if seen[key] {
			return fmt.Errorf("duplicate %s %q", kind, label)
		}
		seen[key] = true
	}
	return nil
}

func validateJurisdictions(js []Jurisdiction) error {
	names := make([]string, len(js))
	for i, j := range js {
		names[i] = j.Name
		for _, a := range j.Aliases {
			if err := validateLabel("alias", a); err != nil {
				return fmt.Errorf("jurisdiction %q: %w", j.Name, err)
			}
		}
	}
	return validateList("jurisdiction", names)
}

func validateWatchlist(entries []WatchlistEntry) error {
	names := make([]string, len(entries))
	for i, e := range entries {
		switch e.List {
		case ListPEP, ListSanctions:
		case "":
			return fmt.Errorf("entry %d (%s): list is required", i, e.Name)
		default:
			return fmt.Errorf("entry %d (%s): invalid list %q (must be one of: PEP, Sanctions)", i, e.Name, e.List)
		}
		// the same name may appear once per list
		names[i] = string(e.List) + ":" + e.Name
		if err := validateLabel("watchlist name", e.Name); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return validateList("watchlist entry", names)
}

func validateAdverseMedia(entries []AdverseMediaEntry) error {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		if err := validateLabel("headline", e.Headline); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.Name, err)
		}
	}
	return validateList("adverse media name", names)
}
