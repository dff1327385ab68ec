// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes controller snapshots for people (Table) and for
// tools (JSON, YAML).
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/tmsearch/internal/controller"
	"github.com/pdiddy/tmsearch/pkg/types"
)

const (
	maxDescription = 150
	maxClasses     = 2
	maxFacets      = 10
	dateLayout     = "1/2/2006"
)

// Status labels shown next to each mark.
const (
	LabelAbandoned = "Dead/Abandoned"
	LabelLive      = "Live/Registered"
)

// styles are built per writer so colour is only emitted to terminals.
type styles struct {
	header, mark, live, dead, meta, facet, errText lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		mark:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		live:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		dead:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		meta:    r.NewStyle().Foreground(lipgloss.Color("240")),
		facet:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		errText: r.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
	}
}

// Table writes a human-readable view of s to w.
func Table(w io.Writer, s controller.State) {
	st := newStyles(w)

	switch s.Status {
	case controller.Idle:
		fmt.Fprintln(w, st.meta.Render("No search yet."))
		return
	case controller.Loading:
		fmt.Fprintln(w, st.meta.Render(fmt.Sprintf("Searching for %q...", s.Parameters.QueryText)))
		if s.Result == nil {
			return
		}
	case controller.Failed:
		fmt.Fprintln(w, st.errText.Render(s.ErrorMessage()))
		if s.Result == nil {
			return
		}
	}

	res := s.Result
	fmt.Fprintln(w, st.header.Render(Header(res.TotalCount, s.Parameters.QueryText)))
	if active := describeFilters(s.Parameters); active != "" {
		fmt.Fprintln(w, st.meta.Render("Filters: "+active))
	}
	fmt.Fprintln(w)

	if len(res.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
	}
	for i, r := range res.Items {
		writeRecord(w, st, i+1+(s.Parameters.Page-1)*rows(s), r)
	}

	writeFacets(w, st, res.Facets)

	if pages := s.TotalPages(); pages > 1 {
		fmt.Fprintln(w, st.meta.Render(Footer(s.Parameters.Page, pages)+pagerHint(s)))
	}
}

// Header is the summary line above the results.
func Header(total int, query string) string {
	return fmt.Sprintf("About %d trademarks found for %q", total, query)
}

// Footer is the pagination line shown when there is more than one page.
func Footer(page, pages int) string {
	return fmt.Sprintf("Page %d of %d", page, pages)
}

// pagerHint names the page moves available from s.
func pagerHint(s controller.State) string {
	var moves []string
	if s.HasPrevPage() {
		moves = append(moves, "[prev]")
	}
	if s.HasNextPage() {
		moves = append(moves, "[next]")
	}
	if len(moves) == 0 {
		return ""
	}
	return "  " + strings.Join(moves, " ")
}

func rows(s controller.State) int {
	if s.Rows > 0 {
		return s.Rows
	}
	return types.DefaultRows
}

func writeRecord(w io.Writer, st styles, n int, r types.TrademarkRecord) {
	label, style := StatusLabel(r.StatusType), st.live
	if label == LabelAbandoned {
		style = st.dead
	}

	fmt.Fprintf(w, "%3d. %s  %s\n", n, st.mark.Render(orDash(r.MarkIdentification)), style.Render(label))
	fmt.Fprintf(w, "     Owner:        %s\n", orDash(r.CurrentOwner))
	fmt.Fprintf(w, "     Registration: %s", orDash(r.RegistrationNumber))
	if d := FormatEpoch(r.RegistrationDate); d != "" {
		fmt.Fprintf(w, " on %s", d)
	}
	fmt.Fprintln(w)
	if d := FormatEpoch(r.RenewalDate); d != "" {
		fmt.Fprintf(w, "     Renewal:      %s\n", d)
	}
	fmt.Fprintf(w, "     Description:  %s\n", Description(r.DescriptionTerms))
	if c := Classes(r.ClassCodes); c != "" {
		fmt.Fprintf(w, "     %s\n", st.meta.Render(c))
	}
	fmt.Fprintln(w)
}

func writeFacets(w io.Writer, st styles, f types.Facets) {
	groups := []struct {
		title  string
		facets []types.Facet
	}{
		{"Owners", f.Owners},
		{"Law firms", f.LawFirms},
		{"Attorneys", f.Attorneys},
	}
	for _, g := range groups {
		if len(g.facets) == 0 {
			continue
		}
		fmt.Fprintln(w, st.facet.Render(g.title))
		for i, fc := range g.facets {
			if i == maxFacets {
				fmt.Fprintf(w, "  ... %d more\n", len(g.facets)-maxFacets)
				break
			}
			fmt.Fprintf(w, "  %s (%d)\n", fc.Label, fc.Count)
		}
		fmt.Fprintln(w)
	}
}

// StatusLabel maps the endpoint's status_type onto the two labels shown to
// people.
func StatusLabel(statusType string) string {
	if strings.EqualFold(strings.TrimSpace(statusType), "abandoned") {
		return LabelAbandoned
	}
	return LabelLive
}

// Description joins the description terms and truncates the result.
func Description(terms []string) string {
	if len(terms) == 0 {
		return "No description"
	}
	return truncate(strings.Join(terms, ", "), maxDescription)
}

// Classes lists the first two class codes, with "..." when there are more.
func Classes(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	shown := codes
	if len(shown) > maxClasses {
		shown = shown[:maxClasses]
	}
	parts := make([]string, len(shown))
	for i, c := range shown {
		parts[i] = "Class " + c
	}
	out := strings.Join(parts, "  ")
	if len(codes) > maxClasses {
		out += "  ..."
	}
	return out
}

// FormatEpoch renders optional epoch seconds as a date, or "" when absent.
func FormatEpoch(sec *int64) string {
	t, ok := types.EpochTime(sec)
	if !ok {
		return ""
	}
	return t.Format(dateLayout)
}

func describeFilters(p types.SearchParameters) string {
	f := p.Filters
	var parts []string
	add := func(name string, vs []string) {
		if len(vs) > 0 {
			parts = append(parts, name+"="+strings.Join(vs, "|"))
		}
	}
	if p.Country != types.DefaultCountry {
		parts = append(parts, "country="+p.Country)
	}
	add("status", f.Status)
	add("owner", f.Owners)
	add("attorney", f.Attorneys)
	add("firm", f.LawFirms)
	add("description", f.DescriptionTerms)
	add("class", f.Classes)
	add("state", f.States)
	add("county", f.Counties)
	if f.ExactMatch {
		parts = append(parts, "exact")
	}
	return strings.Join(parts, " ")
}

// truncate cuts s to max runes and appends "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// output is the machine-readable shape shared by JSON and YAML.
type output struct {
	Parameters types.SearchParameters `json:"parameters" yaml:"parameters"`
	Status     string                 `json:"status" yaml:"status"`
	Error      string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Page       int                    `json:"page" yaml:"page"`
	TotalPages int                    `json:"total_pages" yaml:"total_pages"`
	Result     *types.SearchResult    `json:"result,omitempty" yaml:"result,omitempty"`
}

func newOutput(s controller.State) output {
	return output{
		Parameters: s.Parameters,
		Status:     s.Status.String(),
		Error:      s.ErrorMessage(),
		Page:       s.Parameters.Page,
		TotalPages: s.TotalPages(),
		Result:     s.Result,
	}
}

// JSON writes s as indented JSON.
func JSON(w io.Writer, s controller.State) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newOutput(s))
}

// YAML writes s as a YAML document.
func YAML(w io.Writer, s controller.State) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newOutput(s)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Write dispatches on format: "table" (or ""), "json" or "yaml".
func Write(w io.Writer, format string, s controller.State) error {
	switch strings.ToLower(format) {
	case "", "table":
		Table(w, s)
		return nil
	case "json":
		return JSON(w, s)
	case "yaml", "yml":
		return YAML(w, s)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}
