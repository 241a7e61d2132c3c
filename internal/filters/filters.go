package filters

import (
	"shoplens/internal/entities"
)

// Filtered holds the three collections a report is computed from. Their
// cross-references stay consistent only through the date-range linkage
// described on Apply.
type Filtered struct {
	Orders    []entities.Order
	Pageviews []entities.Pageview
	Sessions  []entities.Session
}

// Apply evaluates the criteria against a dataset snapshot.
//
// Orders are matched on product, source, device, campaign and order_date.
// Pageviews are matched on created_at. Sessions are matched on source and
// device; the date range reaches sessions only indirectly, by restricting
// them to the session IDs present in the date-filtered pageviews, not by
// their own created_at. Downstream session metrics depend on that linkage.
//
// Zero criteria return the snapshot's collections unchanged.
func Apply(ds *entities.Dataset, c Criteria) Filtered {
	if c.IsZero() {
		return Filtered{Orders: ds.Orders, Pageviews: ds.Pageviews, Sessions: ds.Sessions}
	}

	orders := make([]entities.Order, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		if !c.Products.Allows(o.ProductName) {
			continue
		}
		if !c.Sources.Allows(o.UTMSource) {
			continue
		}
		if !c.Devices.Allows(o.DeviceType) {
			continue
		}
		if !c.Campaigns.Allows(o.UTMCampaign) {
			continue
		}
		if c.DateRange != nil && !c.DateRange.Contains(o.OrderDate) {
			continue
		}
		orders = append(orders, o)
	}

	pageviews := make([]entities.Pageview, 0, len(ds.Pageviews))
	for _, pv := range ds.Pageviews {
		if c.DateRange != nil && !c.DateRange.Contains(pv.CreatedAt) {
			continue
		}
		pageviews = append(pageviews, pv)
	}

	var inRange map[int64]struct{}
	if c.DateRange != nil {
		inRange = make(map[int64]struct{}, len(pageviews))
		for _, pv := range pageviews {
			inRange[pv.WebsiteSessionID] = struct{}{}
		}
	}

	sessions := make([]entities.Session, 0, len(ds.Sessions))
	for _, s := range ds.Sessions {
		if !c.Sources.Allows(s.UTMSource) {
			continue
		}
		if !c.Devices.Allows(s.DeviceType) {
			continue
		}
		if inRange != nil {
			if _, ok := inRange[s.WebsiteSessionID]; !ok {
				continue
			}
		}
		sessions = append(sessions, s)
	}

	return Filtered{Orders: orders, Pageviews: pageviews, Sessions: sessions}
}

// Dataset lifts a Filtered result back into a Dataset so it can be filtered
// again; the reference tables pass through untouched.
func (f Filtered) Dataset(ds *entities.Dataset) *entities.Dataset {
	return &entities.Dataset{
		Orders:     f.Orders,
		OrderItems: ds.OrderItems,
		Refunds:    ds.Refunds,
		Products:   ds.Products,
		Pageviews:  f.Pageviews,
		Sessions:   f.Sessions,
		Customers:  ds.Customers,
	}
}
