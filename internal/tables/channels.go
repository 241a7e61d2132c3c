package tables

import (
	"sort"

	"shoplens/internal/entities"
)

// SourceDeviceSessions is one cell of the source x device session grid.
type SourceDeviceSessions struct {
	UTMSource  string `json:"utm_source"`
	DeviceType string `json:"device_type"`
	Sessions   int    `json:"sessions"`
}

// ChannelSplitRate is one row of a source x campaign (or source x content)
// rate breakdown.
type ChannelSplitRate struct {
	UTMSource string  `json:"utm_source"`
	Split     string  `json:"split"`
	Sessions  int     `json:"sessions"`
	Matches   int     `json:"matches"`
	RatePct   float64 `json:"rate_pct"`
}

// SessionsBySource counts sessions per utm_source, untagged sessions excluded,
// busiest channel first.
func SessionsBySource(sessions []entities.Session) []NameCount {
	counts := map[string]int{}
	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMSource) {
			continue
		}
		counts[s.UTMSource]++
	}
	return countRows(counts)
}

// OrdersBySource counts orders per utm_source, untagged orders excluded.
func OrdersBySource(orders []entities.Order) []NameCount {
	counts := map[string]int{}
	for _, o := range orders {
		if entities.IsMissingUTM(o.UTMSource) {
			continue
		}
		counts[o.UTMSource]++
	}
	return countRows(counts)
}

// RevenueBySource sums gross revenue per utm_source, untagged orders excluded,
// highest first.
func RevenueBySource(orders []entities.Order) []NameValue {
	totals := map[string]float64{}
	for _, o := range orders {
		if entities.IsMissingUTM(o.UTMSource) {
			continue
		}
		totals[o.UTMSource] += o.PriceUSD
	}
	rows := make([]NameValue, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, NameValue{Name: name, Value: round2(total)})
	}
	sortValuesDesc(rows)
	return rows
}

// UsersByDevice counts distinct users per device type, labels title-cased.
func UsersByDevice(sessions []entities.Session) []NameCount {
	users := map[string]map[int64]struct{}{}
	for _, s := range sessions {
		if s.DeviceType == "" {
			continue
		}
		label := DisplayLabel(s.DeviceType)
		if users[label] == nil {
			users[label] = map[int64]struct{}{}
		}
		users[label][s.UserID] = struct{}{}
	}
	rows := make([]NameCount, 0, len(users))
	for label, ids := range users {
		rows = append(rows, NameCount{Name: label, Count: len(ids)})
	}
	sortCountsDesc(rows)
	return rows
}

// SessionsBySourceDevice counts sessions per source x device pair.
func SessionsBySourceDevice(sessions []entities.Session) []SourceDeviceSessions {
	type key struct{ source, device string }
	counts := map[key]int{}
	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMSource) || s.DeviceType == "" {
			continue
		}
		counts[key{s.UTMSource, s.DeviceType}]++
	}
	rows := make([]SourceDeviceSessions, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, SourceDeviceSessions{UTMSource: k.source, DeviceType: DisplayLabel(k.device), Sessions: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UTMSource != rows[j].UTMSource {
			return rows[i].UTMSource < rows[j].UTMSource
		}
		return rows[i].DeviceType < rows[j].DeviceType
	})
	return rows
}

// SessionsByCampaign counts sessions per utm_campaign, untagged excluded.
func SessionsByCampaign(sessions []entities.Session) []NameCount {
	counts := map[string]int{}
	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMCampaign) {
			continue
		}
		counts[s.UTMCampaign]++
	}
	return countRows(counts)
}

// SessionsByContent counts sessions per utm_content, untagged excluded.
func SessionsByContent(sessions []entities.Session) []NameCount {
	counts := map[string]int{}
	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMContent) {
			continue
		}
		counts[s.UTMContent]++
	}
	return countRows(counts)
}

// BounceSessionsBySource counts bounced sessions per utm_source, untagged
// excluded.
func BounceSessionsBySource(sessions []entities.Session, pageviews []entities.Pageview) []NameCount {
	viewsPerSession := map[int64]int{}
	for _, pv := range pageviews {
		viewsPerSession[pv.WebsiteSessionID]++
	}
	counts := map[string]int{}
	for _, s := range sessions {
		if entities.IsMissingUTM(s.UTMSource) {
			continue
		}
		if viewsPerSession[s.WebsiteSessionID] == 1 {
			counts[s.UTMSource]++
		}
	}
	return countRows(counts)
}

// BounceRateBySourceCampaign computes the bounce rate per source x campaign
// pair. A bounce is a session whose pageview count is exactly one.
func BounceRateBySourceCampaign(sessions []entities.Session, pageviews []entities.Pageview) []ChannelSplitRate {
	return bounceSplit(sessions, pageviews, func(s entities.Session) string { return s.UTMCampaign })
}

// BounceRateBySourceContent computes the bounce rate per source x content pair.
func BounceRateBySourceContent(sessions []entities.Session, pageviews []entities.Pageview) []ChannelSplitRate {
	return bounceSplit(sessions, pageviews, func(s entities.Session) string { return s.UTMContent })
}

// ConversionBySourceCampaign computes the session-to-order conversion rate per
// source x campaign pair.
func ConversionBySourceCampaign(sessions []entities.Session, orders []entities.Order) []ChannelSplitRate {
	return conversionSplit(sessions, orders, func(s entities.Session) string { return s.UTMCampaign })
}

// ConversionBySourceContent computes the conversion rate per source x content
// pair.
func ConversionBySourceContent(sessions []entities.Session, orders []entities.Order) []ChannelSplitRate {
	return conversionSplit(sessions, orders, func(s entities.Session) string { return s.UTMContent })
}

func bounceSplit(sessions []entities.Session, pageviews []entities.Pageview, splitOf func(entities.Session) string) []ChannelSplitRate {
	viewsPerSession := map[int64]int{}
	for _, pv := range pageviews {
		viewsPerSession[pv.WebsiteSessionID]++
	}
	return channelSplit(sessions, splitOf, func(s entities.Session) bool {
		return viewsPerSession[s.WebsiteSessionID] == 1
	})
}

func conversionSplit(sessions []entities.Session, orders []entities.Order, splitOf func(entities.Session) string) []ChannelSplitRate {
	converted := map[int64]struct{}{}
	for _, o := range orders {
		converted[o.WebsiteSessionID] = struct{}{}
	}
	return channelSplit(sessions, splitOf, func(s entities.Session) bool {
		_, ok := converted[s.WebsiteSessionID]
		return ok
	})
}

func channelSplit(sessions []entities.Session, splitOf func(entities.Session) string, matches func(entities.Session) bool) []ChannelSplitRate {
	type key struct{ source, split string }
	type tally struct{ sessions, matches int }
	tallies := map[key]*tally{}
	for _, s := range sessions {
		split := splitOf(s)
		if entities.IsMissingUTM(s.UTMSource) || entities.IsMissingUTM(split) {
			continue
		}
		k := key{s.UTMSource, split}
		t := tallies[k]
		if t == nil {
			t = &tally{}
			tallies[k] = t
		}
		t.sessions++
		if matches(s) {
			t.matches++
		}
	}
	rows := make([]ChannelSplitRate, 0, len(tallies))
	for k, t := range tallies {
		rows = append(rows, ChannelSplitRate{
			UTMSource: k.source,
			Split:     k.split,
			Sessions:  t.sessions,
			Matches:   t.matches,
			RatePct:   pct(t.matches, t.sessions),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].UTMSource != rows[j].UTMSource {
			return rows[i].UTMSource < rows[j].UTMSource
		}
		return rows[i].Split < rows[j].Split
	})
	return rows
}

func countRows(counts map[string]int) []NameCount {
	rows := make([]NameCount, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, NameCount{Name: name, Count: n})
	}
	sortCountsDesc(rows)
	return rows
}
