// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package querystate converts between URL query strings and canonical search
// parameters. It is pure: no I/O, no global state.
//
// Lists are encoded as repeated keys (owners=A&owners=B). Decode also accepts
// comma-joined values for status, classes, states and counties, which older
// links used; owner, attorney, law firm and description values may contain
// commas themselves and are never split.
package querystate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/tmsearch/pkg/types"
)

// Recognized query keys in encoding order.
const (
	KeyQuery       = "q"
	KeyCountry     = "country"
	KeyPage        = "page"
	KeyStatus      = "status"
	KeyOwners      = "owners"
	KeyAttorneys   = "attorneys"
	KeyLawFirms    = "law_firms"
	KeyDescription = "description"
	KeyClasses     = "classes"
	KeyStates      = "states"
	KeyCounties    = "counties"
	KeyExactMatch  = "exact_match"
)

// StatusAll is the sidebar choice meaning "no status filter".
const StatusAll = "All"

// StatusChoices lists the status filters offered by the sidebar.
var StatusChoices = []string{"Registered", "Pending", "Abandoned", "Others"}

// Decode parses a query string into normalized parameters. The input may
// carry a leading "?", or be a path or full URL whose query part is used.
// Unknown keys are ignored and malformed values fall back to defaults.
func Decode(raw string) types.SearchParameters {
	values, _ := url.ParseQuery(queryPart(raw))

	p := types.SearchParameters{
		QueryText: values.Get(KeyQuery),
		Country:   values.Get(KeyCountry),
		Page:      parsePage(values.Get(KeyPage)),
		Filters: types.Filters{
			Status:           values[KeyStatus],
			Owners:           values[KeyOwners],
			Attorneys:        values[KeyAttorneys],
			LawFirms:         values[KeyLawFirms],
			DescriptionTerms: values[KeyDescription],
			Classes:          values[KeyClasses],
			States:           values[KeyStates],
			Counties:         values[KeyCounties],
			ExactMatch:       parseBool(values.Get(KeyExactMatch)),
		},
	}
	return Normalize(p)
}

// Encode renders p as a query string without a leading "?". Only fields that
// differ from their defaults are emitted, in a fixed key order.
func Encode(p types.SearchParameters) string {
	p = Normalize(p)

	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	addAll := func(key string, vs []string) {
		for _, v := range vs {
			add(key, v)
		}
	}

	if p.QueryText != types.DefaultQueryText {
		add(KeyQuery, p.QueryText)
	}
	if p.Country != types.DefaultCountry {
		add(KeyCountry, p.Country)
	}
	if p.Page != types.DefaultPage {
		add(KeyPage, strconv.Itoa(p.Page))
	}
	f := p.Filters
	addAll(KeyStatus, f.Status)
	addAll(KeyOwners, f.Owners)
	addAll(KeyAttorneys, f.Attorneys)
	addAll(KeyLawFirms, f.LawFirms)
	addAll(KeyDescription, f.DescriptionTerms)
	addAll(KeyClasses, f.Classes)
	addAll(KeyStates, f.States)
	addAll(KeyCounties, f.Counties)
	if f.ExactMatch {
		add(KeyExactMatch, "true")
	}
	return b.String()
}

// Normalize brings p into the canonical form produced by Decode: comma-joined
// values of the splittable lists are expanded, statuses take their sidebar
// spelling, the "All" status is dropped, and types.SearchParameters.Normalize
// applies defaults and de-duplication.
func Normalize(p types.SearchParameters) types.SearchParameters {
	p = p.Clone()
	f := &p.Filters
	f.Status = canonicalStatuses(dropAll(splitCommas(f.Status)))
	f.Classes = splitCommas(f.Classes)
	f.States = splitCommas(f.States)
	f.Counties = splitCommas(f.Counties)
	return p.Normalize()
}

func queryPart(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if strings.HasPrefix(raw, "?") {
		return raw[1:]
	}
	if isLocation(raw) {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[i+1:]
		}
		return ""
	}
	return raw
}

// isLocation reports whether raw is a path or URL rather than a bare query.
// Only the text before the first key separator is inspected, since query
// values may carry "://" unencoded.
func isLocation(raw string) bool {
	if strings.HasPrefix(raw, "/") {
		return true
	}
	head := raw
	if i := strings.IndexAny(head, "=&?"); i >= 0 {
		head = head[:i]
	}
	return strings.Contains(head, "://")
}

func parsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return types.DefaultPage
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}

func splitCommas(vs []string) []string {
	var out []string
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			out = append(out, part)
		}
	}
	return out
}

func canonicalStatuses(vs []string) []string {
	for i, v := range vs {
		vs[i] = CanonicalStatus(v)
	}
	return vs
}

func dropAll(vs []string) []string {
	out := vs[:0:0]
	for _, v := range vs {
		if strings.EqualFold(strings.TrimSpace(v), StatusAll) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// CanonicalStatus returns the sidebar spelling of s when it names StatusAll or
// one of StatusChoices, ignoring case. Other values are returned trimmed.
func CanonicalStatus(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, StatusAll) {
		return StatusAll
	}
	for _, c := range StatusChoices {
		if strings.EqualFold(s, c) {
			return c
		}
	}
	return s
}
