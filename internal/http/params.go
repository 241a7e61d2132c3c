package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shoplens/internal/filters"
	"shoplens/internal/timeframe"
)

// parseCriteria builds filter criteria from query parameters. Category
// selections arrive as comma-separated lists (products, sources, devices,
// campaigns); the date range as from/to in 2006-01-02 form.
func parseCriteria(c *fiber.Ctx) (filters.Criteria, error) {
	crit := filters.Criteria{
		Products:  splitParam(c.Query("products")),
		Sources:   splitParam(c.Query("sources")),
		Devices:   splitParam(c.Query("devices")),
		Campaigns: splitParam(c.Query("campaigns")),
	}
	dateRange, err := timeframe.Parse(c.Query("from"), c.Query("to"))
	if err != nil {
		return filters.Criteria{}, err
	}
	crit.DateRange = dateRange
	return crit, nil
}

func splitParam(raw string) filters.StringSet {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return filters.NewStringSet(values...)
}
