package tables

import (
	"sort"

	"github.com/montanaflynn/stats"

	"shoplens/internal/entities"
)

// ChannelKPIRow is one channel's row of the KPI comparison matrix. The same
// shape carries both raw values and their standardized (z-score) form.
type ChannelKPIRow struct {
	UTMSource         string  `json:"utm_source"`
	Sessions          float64 `json:"sessions"`
	Users             float64 `json:"users"`
	BounceSessions    float64 `json:"bounce_sessions"`
	BounceRatePct     float64 `json:"bounce_rate_pct"`
	SessionsPerUser   float64 `json:"sessions_per_user"`
	Orders            float64 `json:"orders"`
	Revenue           float64 `json:"revenue"`
	Cogs              float64 `json:"cogs"`
	AvgOrderValue     float64 `json:"avg_order_value"`
	GrossProfitPct    float64 `json:"gross_profit_pct"`
	ConversionRatePct float64 `json:"conversion_rate_pct"`
}

// kpiColumns maps every numeric column for standardization.
var kpiColumns = []func(*ChannelKPIRow) *float64{
	func(r *ChannelKPIRow) *float64 { return &r.Sessions },
	func(r *ChannelKPIRow) *float64 { return &r.Users },
	func(r *ChannelKPIRow) *float64 { return &r.BounceSessions },
	func(r *ChannelKPIRow) *float64 { return &r.BounceRatePct },
	func(r *ChannelKPIRow) *float64 { return &r.SessionsPerUser },
	func(r *ChannelKPIRow) *float64 { return &r.Orders },
	func(r *ChannelKPIRow) *float64 { return &r.Revenue },
	func(r *ChannelKPIRow) *float64 { return &r.Cogs },
	func(r *ChannelKPIRow) *float64 { return &r.AvgOrderValue },
	func(r *ChannelKPIRow) *float64 { return &r.GrossProfitPct },
	func(r *ChannelKPIRow) *float64 { return &r.ConversionRatePct },
}

// ChannelKPIMatrix computes the per-channel KPI matrix over the filtered
// collections, untagged traffic excluded, channels alphabetical. Conversion
// here is orders over sessions for the source, not distinct converted
// sessions.
func ChannelKPIMatrix(orders []entities.Order, sessions []entities.Session, pageviews []entities.Pageview) []ChannelKPIRow {
	viewsPerSession := map[int64]int{}
	for _, pv := range pageviews {
		viewsPerSession[pv.WebsiteSessionID]++
	}

	type tally struct {
		sessions, bounces, orders   int
		users                       map[int64]struct{}
		revenue, cogs, refundAmount float64
	}
	tallies := map[string]*tally{}
	get := func(source string) *tally {
		t := tallies[source]
		if t == nil {
			t = &tally{users: map[int64]struct{}{}}
			tallies[source] = t
		}
		return t
	}

	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMSource) {
			continue
		}
		t := get(s.UTMSource)
		t.sessions++
		t.users[s.UserID] = struct{}{}
		if viewsPerSession[s.WebsiteSessionID] == 1 {
			t.bounces++
		}
	}
	for _, o := range orders {
		if entities.IsMissingUTM(o.UTMSource) {
			continue
		}
		t := get(o.UTMSource)
		t.orders++
		t.revenue += o.PriceUSD
		t.cogs += o.CogsUSD
		t.refundAmount += o.RefundAmount()
	}

	sources := make([]string, 0, len(tallies))
	for s := range tallies {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	rows := make([]ChannelKPIRow, 0, len(sources))
	for _, source := range sources {
		t := tallies[source]
		row := ChannelKPIRow{
			UTMSource:      source,
			Sessions:       float64(t.sessions),
			Users:          float64(len(t.users)),
			BounceSessions: float64(t.bounces),
			Orders:         float64(t.orders),
			Revenue:        round2(t.revenue),
			Cogs:           round2(t.cogs),
		}
		if t.sessions > 0 {
			row.BounceRatePct = pct(t.bounces, t.sessions)
			row.ConversionRatePct = pct(t.orders, t.sessions)
		}
		if len(t.users) > 0 {
			row.SessionsPerUser = round2(float64(t.sessions) / float64(len(t.users)))
		}
		if t.orders > 0 {
			row.AvgOrderValue = round2(t.revenue / float64(t.orders))
		}
		if net := t.revenue - t.refundAmount; net != 0 {
			row.GrossProfitPct = round2((net - t.cogs) / net * 100)
		}
		rows = append(rows, row)
	}
	return rows
}

// Standardize converts each KPI column to z-scores across channels using the
// population standard deviation, so every column reads on a common scale. A
// constant column standardizes to all zeros.
func Standardize(rows []ChannelKPIRow) []ChannelKPIRow {
	out := make([]ChannelKPIRow, len(rows))
	copy(out, rows)
	if len(out) == 0 {
		return out
	}
	for _, col := range kpiColumns {
		values := make([]float64, len(out))
		for i := range out {
			values[i] = *col(&out[i])
		}
		mean, err := stats.Mean(values)
		if err != nil {
			continue
		}
		stddev, err := stats.StandardDeviationPopulation(values)
		if err != nil || stddev == 0 {
			for i := range out {
				*col(&out[i]) = 0
			}
			continue
		}
		for i := range out {
			*col(&out[i]) = round2((values[i] - mean) / stddev)
		}
	}
	return out
}
