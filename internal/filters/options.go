package filters

import (
	"sort"
	"time"

	"shoplens/internal/entities"
)

// Options lists the selectable values per criterion, for populating filter
// controls. Missing UTM values are excluded.
type Options struct {
	Products  []string   `json:"products"`
	Sources   []string   `json:"sources"`
	Devices   []string   `json:"devices"`
	Campaigns []string   `json:"campaigns"`
	MinDate   *time.Time `json:"min_date,omitempty"`
	MaxDate   *time.Time `json:"max_date,omitempty"`
}

// CollectOptions scans the snapshot for the distinct values of each
// filterable dimension. Sources and devices are collected from both orders
// and sessions since either side can carry values the other lacks.
func CollectOptions(ds *entities.Dataset) Options {
	products := map[string]struct{}{}
	sources := map[string]struct{}{}
	devices := map[string]struct{}{}
	campaigns := map[string]struct{}{}

	var minDate, maxDate time.Time
	for _, o := range ds.Orders {
		if o.ProductName != "" {
			products[o.ProductName] = struct{}{}
		}
		if !entities.IsMissingUTM(o.UTMSource) {
			sources[o.UTMSource] = struct{}{}
		}
		if !entities.IsMissingUTM(o.UTMCampaign) {
			campaigns[o.UTMCampaign] = struct{}{}
		}
		if o.DeviceType != "" {
			devices[o.DeviceType] = struct{}{}
		}
		if minDate.IsZero() || o.OrderDate.Before(minDate) {
			minDate = o.OrderDate
		}
		if o.OrderDate.After(maxDate) {
			maxDate = o.OrderDate
		}
	}
	for _, s := range ds.Sessions {
		if !entities.IsMissingUTM(s.UTMSource) {
			sources[s.UTMSource] = struct{}{}
		}
		if s.DeviceType != "" {
			devices[s.DeviceType] = struct{}{}
		}
	}

	opts := Options{
		Products:  sortedKeys(products),
		Sources:   sortedKeys(sources),
		Devices:   sortedKeys(devices),
		Campaigns: sortedKeys(campaigns),
	}
	if !minDate.IsZero() {
		opts.MinDate = &minDate
	}
	if !maxDate.IsZero() {
		opts.MaxDate = &maxDate
	}
	return opts
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
