// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the trademark search client:
// the canonical search parameters, the normalized search result, and the
// configuration blocks loaded by the CLI.
package types

import (
	"slices"
	"strings"
)

// Defaults applied when a parameter is absent from the query string.
const (
	DefaultQueryText = "nike"
	DefaultCountry   = "us"
	DefaultPage      = 1
	DefaultRows      = 10
)

// Filters holds the facet and attribute filters of a search.
type Filters struct {
	// Status is a set; Normalize keeps it sorted and free of duplicates.
	Status []string `json:"status,omitempty" yaml:"status,omitempty"`

	// Owners, Attorneys and LawFirms keep selection order.
	Owners    []string `json:"owners,omitempty" yaml:"owners,omitempty"`
	Attorneys []string `json:"attorneys,omitempty" yaml:"attorneys,omitempty"`
	LawFirms  []string `json:"law_firms,omitempty" yaml:"law_firms,omitempty"`

	DescriptionTerms []string `json:"description,omitempty" yaml:"description,omitempty"`
	Classes          []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	States           []string `json:"states,omitempty" yaml:"states,omitempty"`
	Counties         []string `json:"counties,omitempty" yaml:"counties,omitempty"`

	ExactMatch bool `json:"exact_match,omitempty" yaml:"exact_match,omitempty"`
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return len(f.Status) == 0 && len(f.Owners) == 0 && len(f.Attorneys) == 0 &&
		len(f.LawFirms) == 0 && len(f.DescriptionTerms) == 0 && len(f.Classes) == 0 &&
		len(f.States) == 0 && len(f.Counties) == 0 && !f.ExactMatch
}

// Clone returns a deep copy so callers can edit without aliasing.
func (f Filters) Clone() Filters {
	return Filters{
		Status:           slices.Clone(f.Status),
		Owners:           slices.Clone(f.Owners),
		Attorneys:        slices.Clone(f.Attorneys),
		LawFirms:         slices.Clone(f.LawFirms),
		DescriptionTerms: slices.Clone(f.DescriptionTerms),
		Classes:          slices.Clone(f.Classes),
		States:           slices.Clone(f.States),
		Counties:         slices.Clone(f.Counties),
		ExactMatch:       f.ExactMatch,
	}
}

// Equal compares filters semantically: nil and empty lists are the same.
func (f Filters) Equal(o Filters) bool {
	return slices.Equal(f.Status, o.Status) &&
		slices.Equal(f.Owners, o.Owners) &&
		slices.Equal(f.Attorneys, o.Attorneys) &&
		slices.Equal(f.LawFirms, o.LawFirms) &&
		slices.Equal(f.DescriptionTerms, o.DescriptionTerms) &&
		slices.Equal(f.Classes, o.Classes) &&
		slices.Equal(f.States, o.States) &&
		slices.Equal(f.Counties, o.Counties) &&
		f.ExactMatch == o.ExactMatch
}

// SearchParameters is the canonical representation of every search input.
// Values reaching the controller are always normalized (see Normalize).
type SearchParameters struct {
	QueryText string  `json:"q" yaml:"q"`
	Country   string  `json:"country" yaml:"country"`
	Page      int     `json:"page" yaml:"page"`
	Filters   Filters `json:"filters" yaml:"filters"`
}

// DefaultParameters returns the parameters used for an empty query string.
func DefaultParameters() SearchParameters {
	return SearchParameters{
		QueryText: DefaultQueryText,
		Country:   DefaultCountry,
		Page:      DefaultPage,
	}
}

// Clone returns a deep copy.
func (p SearchParameters) Clone() SearchParameters {
	p.Filters = p.Filters.Clone()
	return p
}

// Equal reports whether p and o describe the same search.
func (p SearchParameters) Equal(o SearchParameters) bool {
	return p.QueryText == o.QueryText &&
		p.Country == o.Country &&
		p.Page == o.Page &&
		p.Filters.Equal(o.Filters)
}

// Normalize fills defaults, trims values and removes duplicates. Status is
// sorted because it is a set; the other lists keep their first-seen order.
func (p SearchParameters) Normalize() SearchParameters {
	out := p.Clone()
	out.QueryText = strings.TrimSpace(out.QueryText)
	if out.QueryText == "" {
		out.QueryText = DefaultQueryText
	}
	out.Country = strings.ToLower(strings.TrimSpace(out.Country))
	if out.Country == "" {
		out.Country = DefaultCountry
	}
	if out.Page < 1 {
		out.Page = DefaultPage
	}

	f := &out.Filters
	f.Status = dedupe(f.Status)
	slices.Sort(f.Status)
	f.Owners = dedupe(f.Owners)
	f.Attorneys = dedupe(f.Attorneys)
	f.LawFirms = dedupe(f.LawFirms)
	f.DescriptionTerms = dedupe(f.DescriptionTerms)
	f.Classes = dedupe(f.Classes)
	f.States = dedupe(f.States)
	f.Counties = dedupe(f.Counties)
	return out
}

// dedupe trims entries, drops blanks and repeats, and returns nil for an
// empty result so normalized values compare cleanly.
func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
