package tables

import (
	"sort"
	"strings"

	"shoplens/internal/entities"
	"shoplens/internal/metrics"
)

const (
	pathSeparator = " → "
	pathMaxRunes  = 60
)

// PathDuration is one row of the average time-on-site by navigation path table.
type PathDuration struct {
	Path           string  `json:"path"`
	Sessions       int     `json:"sessions"`
	AvgDurationMin float64 `json:"avg_duration_min"`
}

// BuildSessionPaths reconstructs each session's navigation path by joining its
// pageview URLs in visit order. Pageviews sharing a timestamp are ordered by
// pageview ID so the path is stable across runs.
func BuildSessionPaths(pageviews []entities.Pageview) map[int64]string {
	bySession := map[int64][]entities.Pageview{}
	for _, pv := range pageviews {
		bySession[pv.WebsiteSessionID] = append(bySession[pv.WebsiteSessionID], pv)
	}
	paths := make(map[int64]string, len(bySession))
	for sessionID, views := range bySession {
		sort.Slice(views, func(i, j int) bool {
			if !views[i].CreatedAt.Equal(views[j].CreatedAt) {
				return views[i].CreatedAt.Before(views[j].CreatedAt)
			}
			return views[i].WebsitePageviewID < views[j].WebsitePageviewID
		})
		urls := make([]string, len(views))
		for i, pv := range views {
			urls[i] = pv.PageviewURL
		}
		paths[sessionID] = strings.Join(urls, pathSeparator)
	}
	return paths
}

// TruncatePath shortens long paths for display, cutting at 60 runes with an
// ellipsis suffix.
func TruncatePath(path string) string {
	runes := []rune(path)
	if len(runes) <= pathMaxRunes {
		return path
	}
	return string(runes[:pathMaxRunes]) + "..."
}

// AvgDurationByPath averages session duration per navigation path, longest
// dwell first.
func AvgDurationByPath(pageviews []entities.Pageview) []PathDuration {
	paths := BuildSessionPaths(pageviews)
	durations := metrics.SessionDurations(pageviews)
	type tally struct {
		sessions int
		total    float64
	}
	tallies := map[string]*tally{}
	for sessionID, path := range paths {
		t := tallies[path]
		if t == nil {
			t = &tally{}
			tallies[path] = t
		}
		t.sessions++
		t.total += durations[sessionID]
	}
	rows := make([]PathDuration, 0, len(tallies))
	for path, t := range tallies {
		rows = append(rows, PathDuration{
			Path:           path,
			Sessions:       t.sessions,
			AvgDurationMin: round2(t.total / float64(t.sessions)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AvgDurationMin != rows[j].AvgDurationMin {
			return rows[i].AvgDurationMin > rows[j].AvgDurationMin
		}
		return rows[i].Path < rows[j].Path
	})
	return rows
}

// OrdersByPath counts orders per navigation path of the converting session,
// paths truncated for display, most orders first. Orders whose session has no
// pageviews are dropped since there is no path to attribute them to.
func OrdersByPath(orders []entities.Order, pageviews []entities.Pageview) []NameCount {
	paths := BuildSessionPaths(pageviews)
	counts := map[string]int{}
	for _, o := range orders {
		path, ok := paths[o.WebsiteSessionID]
		if !ok {
			continue
		}
		counts[TruncatePath(path)]++
	}
	return countRows(counts)
}

// FirstPageVisits counts sessions per landing page, busiest first.
func FirstPageVisits(pageviews []entities.Pageview) []NameCount {
	type first struct {
		url string
		ts  int64
		id  int64
	}
	firsts := map[int64]first{}
	for _, pv := range pageviews {
		ts := pv.CreatedAt.UnixNano()
		cur, ok := firsts[pv.WebsiteSessionID]
		if !ok || ts < cur.ts || (ts == cur.ts && pv.WebsitePageviewID < cur.id) {
			firsts[pv.WebsiteSessionID] = first{url: pv.PageviewURL, ts: ts, id: pv.WebsitePageviewID}
		}
	}
	counts := map[string]int{}
	for _, f := range firsts {
		counts[f.url]++
	}
	return countRows(counts)
}

// SessionsByPage counts, per page URL, the distinct sessions that viewed it.
func SessionsByPage(pageviews []entities.Pageview) []NameCount {
	seen := map[string]map[int64]struct{}{}
	for _, pv := range pageviews {
		if seen[pv.PageviewURL] == nil {
			seen[pv.PageviewURL] = map[int64]struct{}{}
		}
		seen[pv.PageviewURL][pv.WebsiteSessionID] = struct{}{}
	}
	rows := make([]NameCount, 0, len(seen))
	for url, ids := range seen {
		rows = append(rows, NameCount{Name: url, Count: len(ids)})
	}
	sortCountsDesc(rows)
	return rows
}

// BounceRateByPage computes, per landing page, the share of its sessions that
// bounced (saw only that one page), alphabetical by page.
func BounceRateByPage(pageviews []entities.Pageview) []NameRate {
	viewsPerSession := map[int64]int{}
	for _, pv := range pageviews {
		viewsPerSession[pv.WebsiteSessionID]++
	}
	type first struct {
		url string
		ts  int64
		id  int64
	}
	firsts := map[int64]first{}
	for _, pv := range pageviews {
		ts := pv.CreatedAt.UnixNano()
		cur, ok := firsts[pv.WebsiteSessionID]
		if !ok || ts < cur.ts || (ts == cur.ts && pv.WebsitePageviewID < cur.id) {
			firsts[pv.WebsiteSessionID] = first{url: pv.PageviewURL, ts: ts, id: pv.WebsitePageviewID}
		}
	}
	type tally struct{ sessions, bounces int }
	tallies := map[string]*tally{}
	for sessionID, f := range firsts {
		t := tallies[f.url]
		if t == nil {
			t = &tally{}
			tallies[f.url] = t
		}
		t.sessions++
		if viewsPerSession[sessionID] == 1 {
			t.bounces++
		}
	}
	rows := make([]NameRate, 0, len(tallies))
	for url, t := range tallies {
		rows = append(rows, NameRate{Name: url, RatePct: pct(t.bounces, t.sessions)})
	}
	sortByName(rows)
	return rows
}
