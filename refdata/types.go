// Package refdata loads the static reference data used by the risk rules:
// high-risk jurisdictions and occupations, the PEP and sanctions watchlist,
// adverse media entries and the unusual source-of-wealth keywords.
package refdata

import (
	"slices"
	"strings"

	"github.com/biter777/countries"
	"github.com/hashicorp/go-set/v2"

	"github.com/liamcoop/riskscore/namematch"
)

// ListType classifies a watchlist entry.
type ListType string

const (
	ListPEP       ListType = "PEP"
	ListSanctions ListType = "Sanctions"
)

// WatchlistEntry is a named individual on the PEP or sanctions list.
type WatchlistEntry struct {
	Name string   `yaml:"name" json:"name"`
	List ListType `yaml:"list" json:"list"`
}

// MatchName implements namematch.Named.
func (e WatchlistEntry) MatchName() string { return e.Name }

// AdverseMediaEntry is a named individual with an associated negative headline.
type AdverseMediaEntry struct {
	Name     string `yaml:"name" json:"name"`
	Headline string `yaml:"headline" json:"headline"`
}

// MatchName implements namematch.Named.
func (e AdverseMediaEntry) MatchName() string { return e.Name }

// Jurisdiction is a high-risk country with optional alternative spellings.
type Jurisdiction struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// ReferenceData is the immutable result of a successful Load. It is safe for
// concurrent use; accessors return copies.
type ReferenceData struct {
	jurisdictions    []Jurisdiction
	jurisdictionKeys *set.Set[string]  // folded names and aliases
	jurisdictionISO  map[string]string // alpha-2 -> jurisdiction name
	jurisdictionName map[string]string // folded name or alias -> jurisdiction name
	occupations      []string
	watchlist        []WatchlistEntry
	peps             []WatchlistEntry
	sanctions        []WatchlistEntry
	adverseMedia     []AdverseMediaEntry
	wealthKeywords   []string
}

func newReferenceData(
	jurisdictions []Jurisdiction,
	occupations []string,
	watchlist []WatchlistEntry,
	adverse []AdverseMediaEntry,
	keywords []string,
) *ReferenceData {
	rd := &ReferenceData{
		jurisdictions:    slices.Clone(jurisdictions),
		jurisdictionKeys: set.New[string](len(jurisdictions)),
		jurisdictionISO:  make(map[string]string),
		jurisdictionName: make(map[string]string),
		occupations:      slices.Clone(occupations),
		watchlist:        slices.Clone(watchlist),
		adverseMedia:     slices.Clone(adverse),
		wealthKeywords:   make([]string, 0, len(keywords)),
	}

	for _, j := range jurisdictions {
		for _, label := range append([]string{j.Name}, j.Aliases...) {
			key := namematch.Fold(label)
			if key == "" {
				continue
			}
			rd.jurisdictionKeys.Insert(key)
			if _, ok := rd.jurisdictionName[key]; !ok {
				rd.jurisdictionName[key] = j.Name
			}
			if code := countries.ByName(label); code != countries.Unknown {
				if _, ok := rd.jurisdictionISO[code.Alpha2()]; !ok {
					rd.jurisdictionISO[code.Alpha2()] = j.Name
				}
			}
		}
	}

	for _, e := range watchlist {
		switch e.List {
		case ListPEP:
			rd.peps = append(rd.peps, e)
		case ListSanctions:
			rd.sanctions = append(rd.sanctions, e)
		}
	}

	for _, kw := range keywords {
		rd.wealthKeywords = append(rd.wealthKeywords, strings.ToLower(strings.TrimSpace(kw)))
	}

	return rd
}

// Jurisdictions returns the high-risk jurisdictions in file order.
func (rd *ReferenceData) Jurisdictions() []Jurisdiction {
	out := make([]Jurisdiction, len(rd.jurisdictions))
	for i, j := range rd.jurisdictions {
		out[i] = Jurisdiction{Name: j.Name, Aliases: slices.Clone(j.Aliases)}
	}
	return out
}

// HighRiskJurisdiction reports whether nationality names a high-risk
// jurisdiction. The comparison is exact after case and punctuation folding,
// against the configured name or its aliases. The ISO 3166-1 alpha-2 and
// alpha-3 codes of a configured country are accepted too. It returns the
// configured jurisdiction name.
func (rd *ReferenceData) HighRiskJurisdiction(nationality string) (string, bool) {
	key := namematch.Fold(nationality)
	if key == "" {
		return "", false
	}
	if rd.jurisdictionKeys.Contains(key) {
		return rd.jurisdictionName[key], true
	}
	if code, ok := isoCode(nationality); ok {
		if name, ok := rd.jurisdictionISO[code.Alpha2()]; ok {
			return name, true
		}
	}
	return "", false
}

// isoCode resolves an ISO 3166-1 alpha-2 or alpha-3 code such as "PK" or
// "PAK". Demonyms and other spellings that countries.ByName accepts are
// rejected so "Russian" does not count as Russia.
func isoCode(s string) (countries.CountryCode, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if n := len(s); n < 2 || n > 3 {
		return countries.Unknown, false
	}
	code := countries.ByName(s)
	if code == countries.Unknown || (code.Alpha2() != s && code.Alpha3() != s) {
		return countries.Unknown, false
	}
	return code, true
}

// Occupations returns the high-risk occupation entries in file order.
func (rd *ReferenceData) Occupations() []string {
	return slices.Clone(rd.occupations)
}

// Watchlist returns every watchlist entry in file order.
func (rd *ReferenceData) Watchlist() []WatchlistEntry {
	return slices.Clone(rd.watchlist)
}

// PEPs returns the PEP entries in file order.
func (rd *ReferenceData) PEPs() []WatchlistEntry {
	return slices.Clone(rd.peps)
}

// Sanctions returns the sanctions entries in file order.
func (rd *ReferenceData) Sanctions() []WatchlistEntry {
	return slices.Clone(rd.sanctions)
}

// AdverseMedia returns the adverse media entries in file order.
func (rd *ReferenceData) AdverseMedia() []AdverseMediaEntry {
	return slices.Clone(rd.adverseMedia)
}

// WealthKeywords returns the lowercased source-of-wealth keywords in file order.
func (rd *ReferenceData) WealthKeywords() []string {
	return slices.Clone(rd.wealthKeywords)
}
