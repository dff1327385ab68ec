// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/tmsearch/pkg/types"
)

// Search endpoint JSON structures. Every level is optional; normalize turns
// absences into zero values instead of errors.
type wireResponse struct {
	Hits         *wireHits                  `json:"hits"`
	Aggregations map[string]wireAggregation `json:"aggregations"`
}

type wireHits struct {
	Total wireTotal `json:"total"`
	Hits  []wireHit `json:"hits"`
}

type wireHit struct {
	ID     flexString `json:"_id"`
	Source wireSource `json:"_source"`
}

type wireSource struct {
	MarkIdentification flexString   `json:"mark_identification"`
	CurrentOwner       flexString   `json:"current_owner"`
	RegistrationNumber flexString   `json:"registration_number"`
	RegistrationDate   flexEpoch    `json:"registration_date"`
	RenewalDate        flexEpoch    `json:"renewal_date"`
	StatusType         flexString   `json:"status_type"`
	Description        []flexString `json:"mark_description_description"`
	ClassCodes         []flexString `json:"class_codes"`
}

type wireAggregation struct {
	Buckets []wireBucket `json:"buckets"`
}

type wireBucket struct {
	Key      flexString `json:"key"`
	DocCount int        `json:"doc_count"`
}

// Aggregation names used by the endpoint.
const (
	aggOwners    = "current_owners"
	aggLawFirms  = "law_firms"
	aggAttorneys = "attorneys"
)

// wireTotal accepts both {"value": n} and a bare n.
type wireTotal struct {
	Value int
}

func (t *wireTotal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Value int `json:"value"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		t.Value = obj.Value
		return nil
	}
	return json.Unmarshal(data, &t.Value)
}

// flexString accepts strings, numbers and null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*s = flexString(n.String())
		return nil
	}
}

// flexEpoch holds optional epoch seconds given as a number or numeric string.
type flexEpoch struct {
	sec *int64
}

func (e *flexEpoch) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	str := strings.TrimSpace(string(s))
	if str == "" {
		e.sec = nil
		return nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		// An unreadable date is treated as absent, not as a broken response.
		e.sec = nil
		return nil
	}
	v := int64(f)
	e.sec = &v
	return nil
}

// normalize converts a decoded response into a SearchResult.
func normalize(wr wireResponse) types.SearchResult {
	res := types.SearchResult{
		Items: []types.TrademarkRecord{},
		Facets: types.Facets{
			Owners:    facets(wr.Aggregations[aggOwners]),
			LawFirms:  facets(wr.Aggregations[aggLawFirms]),
			Attorneys: facets(wr.Aggregations[aggAttorneys]),
		},
	}
	if wr.Hits == nil {
		return res
	}

	res.TotalCount = max(wr.Hits.Total.Value, 0)
	for _, h := range wr.Hits.Hits {
		src := h.Source
		res.Items = append(res.Items, types.TrademarkRecord{
			ID:                 string(h.ID),
			MarkIdentification: string(src.MarkIdentification),
			CurrentOwner:       string(src.CurrentOwner),
			RegistrationNumber: string(src.RegistrationNumber),
			RegistrationDate:   src.RegistrationDate.sec,
			RenewalDate:        src.RenewalDate.sec,
			StatusType:         string(src.StatusType),
			DescriptionTerms:   nonEmpty(src.Description),
			ClassCodes:         nonEmpty(src.ClassCodes),
		})
	}
	// A total below the items we hold is not authoritative.
	if res.TotalCount < len(res.Items) {
		res.TotalCount = len(res.Items)
	}
	return res
}

func facets(agg wireAggregation) []types.Facet {
	out := make([]types.Facet, 0, len(agg.Buckets))
	for _, b := range agg.Buckets {
		if b.Key == "" {
			continue
		}
		out = append(out, types.Facet{Label: string(b.Key), Count: b.DocCount})
	}
	return out
}

func nonEmpty(in []flexString) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, string(s))
		}
	}
	return out
}
