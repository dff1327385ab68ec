// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"slices"
	"strings"

	"github.com/pdiddy/tmsearch/internal/querystate"
	"github.com/pdiddy/tmsearch/pkg/types"
)

// Edit changes a working copy of the parameters. Edits never touch the
// address bar; OnUserEdit applies them and pushes the result.
type Edit func(p *types.SearchParameters)

// SetQuery replaces the free text without touching filters. Use
// OnQuerySubmit for a new search that clears filters.
func SetQuery(text string) Edit {
	return func(p *types.SearchParameters) { p.QueryText = text }
}

// SetCountry selects the country code searched.
func SetCountry(country string) Edit {
	return func(p *types.SearchParameters) { p.Country = country }
}

// SetPage jumps to page n. Values below 1 normalize to 1.
func SetPage(n int) Edit {
	return func(p *types.SearchParameters) { p.Page = n }
}

// SetStatus replaces the status filter. "All" clears it.
func SetStatus(statuses ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Status = slices.Clone(statuses) }
}

// ToggleStatus adds or removes one status. Toggling "All" clears the filter.
func ToggleStatus(status string) Edit {
	return func(p *types.SearchParameters) {
		if strings.EqualFold(status, querystate.StatusAll) {
			p.Filters.Status = nil
			return
		}
		p.Filters.Status = toggle(p.Filters.Status, status)
	}
}

// ToggleOwner adds or removes an owner facet selection.
func ToggleOwner(owner string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Owners = toggle(p.Filters.Owners, owner) }
}

// ToggleAttorney adds or removes an attorney facet selection.
func ToggleAttorney(attorney string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Attorneys = toggle(p.Filters.Attorneys, attorney) }
}

// ToggleLawFirm adds or removes a law firm facet selection.
func ToggleLawFirm(firm string) Edit {
	return func(p *types.SearchParameters) { p.Filters.LawFirms = toggle(p.Filters.LawFirms, firm) }
}

// ToggleClass adds or removes one class code.
func ToggleClass(code string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Classes = toggle(p.Filters.Classes, code) }
}

// ToggleDescriptionTerm adds or removes one description term.
func ToggleDescriptionTerm(term string) Edit {
	return func(p *types.SearchParameters) {
		p.Filters.DescriptionTerms = toggle(p.Filters.DescriptionTerms, term)
	}
}

// SetOwners replaces the owner filter.
func SetOwners(owners ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Owners = slices.Clone(owners) }
}

// SetAttorneys replaces the attorney filter.
func SetAttorneys(attorneys ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Attorneys = slices.Clone(attorneys) }
}

// SetLawFirms replaces the law firm filter.
func SetLawFirms(firms ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.LawFirms = slices.Clone(firms) }
}

// SetDescriptionTerms replaces the description term filter.
func SetDescriptionTerms(terms ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.DescriptionTerms = slices.Clone(terms) }
}

// SetClasses replaces the class code filter.
func SetClasses(classes ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Classes = slices.Clone(classes) }
}

// SetStates replaces the state filter.
func SetStates(states ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.States = slices.Clone(states) }
}

// SetCounties replaces the county filter.
func SetCounties(counties ...string) Edit {
	return func(p *types.SearchParameters) { p.Filters.Counties = slices.Clone(counties) }
}

// SetExactMatch turns exact matching of the query text on or off.
func SetExactMatch(on bool) Edit {
	return func(p *types.SearchParameters) { p.Filters.ExactMatch = on }
}

// ClearFilters resets every filter, keeping query text and country.
func ClearFilters() Edit {
	return func(p *types.SearchParameters) { p.Filters = types.Filters{} }
}

func toggle(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}
