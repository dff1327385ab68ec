// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TrademarkRecord is one normalized hit returned by the search endpoint.
type TrademarkRecord struct {
	ID                 string `json:"id" yaml:"id"`
	MarkIdentification string `json:"mark_identification" yaml:"mark_identification"`
	CurrentOwner       string `json:"current_owner" yaml:"current_owner"`
	RegistrationNumber string `json:"registration_number" yaml:"registration_number"`

	// RegistrationDate and RenewalDate are epoch seconds; nil when the
	// endpoint omitted them.
	RegistrationDate *int64 `json:"registration_date,omitempty" yaml:"registration_date,omitempty"`
	RenewalDate      *int64 `json:"renewal_date,omitempty" yaml:"renewal_date,omitempty"`

	StatusType       string   `json:"status_type" yaml:"status_type"`
	DescriptionTerms []string `json:"description" yaml:"description"`
	ClassCodes       []string `json:"class_codes" yaml:"class_codes"`
}

// Registered returns the registration date, or false when it is absent.
func (r TrademarkRecord) Registered() (time.Time, bool) {
	return EpochTime(r.RegistrationDate)
}

// Renewal returns the renewal date, or false when it is absent.
func (r TrademarkRecord) Renewal() (time.Time, bool) {
	return EpochTime(r.RenewalDate)
}

// EpochTime converts optional epoch seconds to a UTC time.
func EpochTime(sec *int64) (time.Time, bool) {
	if sec == nil {
		return time.Time{}, false
	}
	return time.Unix(*sec, 0).UTC(), true
}

// Facet is a filter value with the number of matching documents.
type Facet struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// Facets groups the aggregations used to build the filter sidebar.
type Facets struct {
	Owners    []Facet `json:"owners" yaml:"owners"`
	LawFirms  []Facet `json:"law_firms" yaml:"law_firms"`
	Attorneys []Facet `json:"attorneys" yaml:"attorneys"`
}

// SearchResult is the normalized response of one search call. TotalCount is
// authoritative for pagination even when Items is shorter (last page).
type SearchResult struct {
	TotalCount int               `json:"total_count" yaml:"total_count"`
	Items      []TrademarkRecord `json:"items" yaml:"items"`
	Facets     Facets            `json:"facets" yaml:"facets"`
}

// TotalPages returns ceil(TotalCount/rows). rows <= 0 uses DefaultRows.
func (r SearchResult) TotalPages(rows int) int {
	if rows <= 0 {
		rows = DefaultRows
	}
	if r.TotalCount <= 0 {
		return 0
	}
	return (r.TotalCount + rows - 1) / rows
}
