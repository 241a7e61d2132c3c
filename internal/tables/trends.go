package tables

import (
	"sort"

	"shoplens/internal/entities"
	"shoplens/internal/timeframe"
)

// MonthFinancials is one row of the monthly revenue vs cost trend.
type MonthFinancials struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Cogs    float64 `json:"cogs"`
	Profit  float64 `json:"profit"`
}

// MonthRate is one row of a monthly percentage trend.
type MonthRate struct {
	Month   string  `json:"month"`
	RatePct float64 `json:"rate_pct"`
}

// SessionsByMonth counts sessions per calendar month, chronological.
func SessionsByMonth(sessions []entities.Session) []NameCount {
	counts := map[string]int{}
	for _, s := range sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		counts[timeframe.MonthKey(s.CreatedAt)]++
	}
	return monthRows(counts)
}

// OrdersByMonth counts orders per calendar month, chronological.
func OrdersByMonth(orders []entities.Order) []NameCount {
	counts := map[string]int{}
	for _, o := range orders {
		counts[timeframe.MonthKey(o.OrderDate)]++
	}
	return monthRows(counts)
}

// RevenueByMonth sums gross revenue per calendar month, chronological.
func RevenueByMonth(orders []entities.Order) []NameValue {
	totals := map[string]float64{}
	for _, o := range orders {
		totals[timeframe.MonthKey(o.OrderDate)] += o.PriceUSD
	}
	rows := make([]NameValue, 0, len(totals))
	for month, total := range totals {
		rows = append(rows, NameValue{Name: month, Value: round2(total)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// RevenueVsCogsByMonth buckets revenue, cost and their difference per month.
func RevenueVsCogsByMonth(orders []entities.Order) []MonthFinancials {
	type tally struct{ revenue, cogs float64 }
	tallies := map[string]*tally{}
	for _, o := range orders {
		month := timeframe.MonthKey(o.OrderDate)
		t := tallies[month]
		if t == nil {
			t = &tally{}
			tallies[month] = t
		}
		t.revenue += o.PriceUSD
		t.cogs += o.CogsUSD
	}
	rows := make([]MonthFinancials, 0, len(tallies))
	for month, t := range tallies {
		rows = append(rows, MonthFinancials{
			Month:   month,
			Revenue: round2(t.revenue),
			Cogs:    round2(t.cogs),
			Profit:  round2(t.revenue - t.cogs),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

// QuarterlyRevenue sums gross revenue per calendar quarter, chronological.
func QuarterlyRevenue(orders []entities.Order) []NameValue {
	totals := map[string]float64{}
	for _, o := range orders {
		totals[timeframe.QuarterKey(o.OrderDate)] += o.PriceUSD
	}
	rows := make([]NameValue, 0, len(totals))
	for quarter, total := range totals {
		rows = append(rows, NameValue{Name: quarter, Value: round2(total)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// MonthlyConversionRate computes converted sessions over total sessions per
// month. Months with sessions but no orders report 0; months with orders but
// no sessions in range are dropped since the rate has no denominator.
func MonthlyConversionRate(sessions []entities.Session, orders []entities.Order) []MonthRate {
	converted := map[int64]struct{}{}
	for _, o := range orders {
		converted[o.WebsiteSessionID] = struct{}{}
	}
	type tally struct{ sessions, converted int }
	tallies := map[string]*tally{}
	for _, s := range sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		month := timeframe.MonthKey(s.CreatedAt)
		t := tallies[month]
		if t == nil {
			t = &tally{}
			tallies[month] = t
		}
		t.sessions++
		if _, ok := converted[s.WebsiteSessionID]; ok {
			t.converted++
		}
	}
	rows := make([]MonthRate, 0, len(tallies))
	for month, t := range tallies {
		rows = append(rows, MonthRate{Month: month, RatePct: pct(t.converted, t.sessions)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows
}

func monthRows(counts map[string]int) []NameCount {
	rows := make([]NameCount, 0, len(counts))
	for month, n := range counts {
		rows = append(rows, NameCount{Name: month, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}
