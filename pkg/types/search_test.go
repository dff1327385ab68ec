// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAppliesDefaults(t *testing.T) {
	got := SearchParameters{QueryText: "  ", Country: " ", Page: -2}.Normalize()
	assert.Equal(t, DefaultParameters(), got)
}

func TestNormalizeLists(t *testing.T) {
	p := SearchParameters{
		QueryText: " puma ",
		Country:   "CA",
		Page:      3,
		Filters: Filters{
			Status: []string{"Pending", "Registered", "Pending", " "},
			Owners: []string{"Zeta", "Acme", "Zeta"},
			Classes: []string{},
		},
	}
	got := p.Normalize()

	assert.Equal(t, "puma", got.QueryText)
	assert.Equal(t, "ca", got.Country)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, []string{"Pending", "Registered"}, got.Filters.Status)
	assert.Equal(t, []string{"Zeta", "Acme"}, got.Filters.Owners, "owners keep selection order")
	assert.Nil(t, got.Filters.Classes)

	// The input is not modified.
	assert.Equal(t, []string{"Zeta", "Acme", "Zeta"}, p.Filters.Owners)
}

func TestEqualTreatsNilAndEmptyAlike(t *testing.T) {
	a := SearchParameters{QueryText: "x", Filters: Filters{Owners: []string{}}}
	b := SearchParameters{QueryText: "x"}
	assert.True(t, a.Equal(b))

	b.Filters.ExactMatch = true
	assert.False(t, a.Equal(b))
}

func TestCloneDoesNotAlias(t *testing.T) {
	p := SearchParameters{Filters: Filters{Owners: []string{"Acme"}}}
	c := p.Clone()
	c.Filters.Owners[0] = "Other"
	assert.Equal(t, "Acme", p.Filters.Owners[0])
}

func TestFiltersIsZero(t *testing.T) {
	assert.True(t, Filters{}.IsZero())
	assert.False(t, Filters{ExactMatch: true}.IsZero())
	assert.False(t, Filters{Counties: []string{"Kings"}}.IsZero())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, rows, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{23, 10, 3},
		{23, 0, 3},
		{100, 25, 4},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SearchResult{TotalCount: tc.total}.TotalPages(tc.rows), "total=%d rows=%d", tc.total, tc.rows)
	}
}

func TestEpochTime(t *testing.T) {
	_, ok := EpochTime(nil)
	assert.False(t, ok)

	sec := int64(946684800)
	got, ok := EpochTime(&sec)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), got)

	r := TrademarkRecord{RenewalDate: &sec}
	_, ok = r.Registered()
	assert.False(t, ok)
	_, ok = r.Renewal()
	assert.True(t, ok)
}
