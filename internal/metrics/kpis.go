// Package metrics computes the KPI report over filtered order, session and
// pageview collections.
//
// Every function here is pure: inputs are never mutated, and a degenerate
// input (zero sessions, zero buyers, zero revenue) never raises an error.
// The affected metric reports 0 and a warning is recorded on the report so
// the rendering side can surface it.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"shoplens/internal/entities"
)

// ChannelRevenue is one row of the revenue-per-channel breakdown.
type ChannelRevenue struct {
	UTMSource    string  `json:"utm_source"`
	GrossRevenue float64 `json:"gross_revenue"`
}

// Report is the full KPI set. Rates are 0 to 100 percentages rounded to two
// decimals; dollar amounts are rounded to cents.
type Report struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalUsers           int     `json:"total_users"`
	SessionsPerUser      float64 `json:"sessions_per_user"`
	TotalBuyers          int     `json:"total_buyers"`
	SessionsPerBuyer     float64 `json:"sessions_per_buyer"`
	RepeatSessionRatePct float64 `json:"repeat_session_rate_pct"`

	TotalOrders    int     `json:"total_orders"`
	TotalUnitsSold int     `json:"total_units_sold"`
	TotalRefunds   int     `json:"total_refunds"`
	GrossRevenue   float64 `json:"gross_revenue"`
	TotalCogs      float64 `json:"total_cogs"`
	TotalRefundAmt float64 `json:"total_refund_amt"`
	NetRevenue     float64 `json:"net_revenue"`
	GrossProfit    float64 `json:"gross_profit"`
	NetProfit      float64 `json:"net_profit"`
	GrossProfitPct float64 `json:"gross_profit_pct"`
	RefundRatePct  float64 `json:"refund_rate_pct"`
	AvgOrderValue  float64 `json:"avg_order_value"`

	ConvertedSessions int     `json:"converted_sessions"`
	ConversionRatePct float64 `json:"conversion_rate_pct"`

	RevenuePerChannel []ChannelRevenue `json:"revenue_per_channel"`

	AvgUserSessionDurationMin  float64 `json:"avg_user_session_duration_min"`
	AvgBuyerSessionDurationMin float64 `json:"avg_buyer_session_duration_min"`
	BounceRatePct              float64 `json:"bounce_rate_pct"`

	Warnings []string `json:"warnings"`
}

// Compute builds the KPI report from the filtered collections.
func Compute(orders []entities.Order, sessions []entities.Session, pageviews []entities.Pageview) Report {
	r := Report{Warnings: []string{}}

	// Traffic and user behavior.
	sessionIDs := map[int64]struct{}{}
	userIDs := map[int64]struct{}{}
	repeatSessions := 0
	for _, s := range sessions {
		sessionIDs[s.WebsiteSessionID] = struct{}{}
		userIDs[s.UserID] = struct{}{}
		if s.IsRepeatSession {
			repeatSessions++
		}
	}
	r.TotalSessions = len(sessionIDs)
	r.TotalUsers = len(userIDs)
	r.SessionsPerUser = r.guardedRatio(float64(r.TotalSessions), float64(r.TotalUsers), "sessions_per_user", "zero users")

	buyerIDs := map[int64]struct{}{}
	orderIDs := map[int64]struct{}{}
	convertedIDs := map[int64]struct{}{}
	for _, o := range orders {
		buyerIDs[o.UserID] = struct{}{}
		orderIDs[o.OrderID] = struct{}{}
		convertedIDs[o.WebsiteSessionID] = struct{}{}
		r.TotalUnitsSold += o.ItemsPurchased
		if o.RefundAmount() != 0 {
			r.TotalRefunds++
		}
		r.GrossRevenue += o.PriceUSD
		r.TotalCogs += o.CogsUSD
		r.TotalRefundAmt += o.RefundAmount()
	}
	r.TotalBuyers = len(buyerIDs)
	r.TotalOrders = len(orderIDs)
	r.SessionsPerBuyer = r.guardedRatio(float64(r.TotalSessions), float64(r.TotalBuyers), "sessions_per_buyer", "zero buyers")
	r.RepeatSessionRatePct = r.guardedPct(float64(repeatSessions), float64(r.TotalSessions), "repeat_session_rate_pct", "zero total sessions")

	// Sales and financials.
	r.NetRevenue = r.GrossRevenue - r.TotalRefundAmt
	r.GrossProfit = r.NetRevenue - r.TotalCogs
	r.NetProfit = r.GrossProfit - r.TotalRefundAmt
	r.GrossProfitPct = r.guardedPct(r.GrossProfit, r.NetRevenue, "gross_profit_pct", "zero net revenue")
	// Refund rate is the refunded-order count over gross revenue dollars,
	// matching what the dashboards have always displayed.
	r.RefundRatePct = r.guardedPct(float64(r.TotalRefunds), r.GrossRevenue, "refund_rate_pct", "zero gross revenue")
	r.AvgOrderValue = r.guardedRatio(r.GrossRevenue, float64(r.TotalOrders), "avg_order_value", "zero orders")

	r.GrossRevenue = round2(r.GrossRevenue)
	r.TotalCogs = round2(r.TotalCogs)
	r.TotalRefundAmt = round2(r.TotalRefundAmt)
	r.NetRevenue = round2(r.NetRevenue)
	r.GrossProfit = round2(r.GrossProfit)
	r.NetProfit = round2(r.NetProfit)

	// Conversion.
	r.ConvertedSessions = len(convertedIDs)
	r.ConversionRatePct = r.guardedPct(float64(r.ConvertedSessions), float64(r.TotalSessions), "conversion_rate_pct", "zero total sessions")

	r.RevenuePerChannel = revenuePerChannel(orders)

	// Session time.
	durations := SessionDurations(pageviews)
	r.AvgUserSessionDurationMin = round2(meanOrZero(durationValues(durations)))
	buyerDurations := make([]float64, 0, len(durations))
	for sessionID, minutes := range durations {
		if _, ok := convertedIDs[sessionID]; ok {
			buyerDurations = append(buyerDurations, minutes)
		}
	}
	r.AvgBuyerSessionDurationMin = round2(meanOrZero(buyerDurations))

	// Bounce rate: sessions with exactly one pageview.
	viewsPerSession := map[int64]int{}
	for _, pv := range pageviews {
		viewsPerSession[pv.WebsiteSessionID]++
	}
	bounced := 0
	for _, n := range viewsPerSession {
		if n == 1 {
			bounced++
		}
	}
	r.BounceRatePct = r.guardedPct(float64(bounced), float64(r.TotalSessions), "bounce_rate_pct", "zero total sessions")

	return r
}

// SessionDurations returns, per session with at least one pageview, the span
// between its first and last pageview in minutes.
func SessionDurations(pageviews []entities.Pageview) map[int64]float64 {
	type span struct {
		first, last int64 // unix nanos
	}
	spans := map[int64]span{}
	for _, pv := range pageviews {
		ts := pv.CreatedAt.UnixNano()
		sp, ok := spans[pv.WebsiteSessionID]
		if !ok {
			spans[pv.WebsiteSessionID] = span{first: ts, last: ts}
			continue
		}
		if ts < sp.first {
			sp.first = ts
		}
		if ts > sp.last {
			sp.last = ts
		}
		spans[pv.WebsiteSessionID] = sp
	}

	durations := make(map[int64]float64, len(spans))
	for id, sp := range spans {
		durations[id] = float64(sp.last-sp.first) / float64(60*1e9)
	}
	return durations
}

func revenuePerChannel(orders []entities.Order) []ChannelRevenue {
	bySource := map[string]float64{}
	for _, o := range orders {
		if entities.IsMissingUTM(o.UTMSource) {
			continue
		}
		bySource[o.UTMSource] += o.PriceUSD
	}
	out := make([]ChannelRevenue, 0, len(bySource))
	for source, revenue := range bySource {
		out = append(out, ChannelRevenue{UTMSource: source, GrossRevenue: round2(revenue)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrossRevenue != out[j].GrossRevenue {
			return out[i].GrossRevenue > out[j].GrossRevenue
		}
		return out[i].UTMSource < out[j].UTMSource
	})
	return out
}

// guardedRatio divides num by den rounded to two decimals; a zero denominator
// yields 0 plus a warning naming the metric.
func (r *Report) guardedRatio(num, den float64, metric, reason string) float64 {
	if den == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("cannot calculate %s: %s", metric, reason))
		return 0
	}
	return round2(num / den)
}

func (r *Report) guardedPct(num, den float64, metric, reason string) float64 {
	if den == 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("cannot calculate %s: %s", metric, reason))
		return 0
	}
	return round2(num / den * 100)
}

func durationValues(durations map[int64]float64) []float64 {
	out := make([]float64, 0, len(durations))
	for _, v := range durations {
		out = append(out, v)
	}
	return out
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
