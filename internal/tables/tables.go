// Package tables builds the derived breakdown tables shown on the stakeholder
// dashboards. Like the metrics package, everything here is pure and never
// mutates its inputs.
package tables

import (
	"math"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayLabel normalizes a raw dimension value for display, e.g. "desktop"
// becomes "Desktop".
func DisplayLabel(v string) string {
	return titleCaser.String(v)
}

// NameCount is a generic name/count row.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NameValue is a generic name/amount row for dollar breakdowns.
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// NameRate is a generic name/percentage row.
type NameRate struct {
	Name    string  `json:"name"`
	RatePct float64 `json:"rate_pct"`
}

func sortCountsDesc(rows []NameCount) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
}

func sortValuesDesc(rows []NameValue) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Name < rows[j].Name
	})
}

func sortByName(rows []NameRate) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round2(float64(num) / float64(den) * 100)
}
