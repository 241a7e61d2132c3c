// Package report assembles the per-stakeholder dashboard payloads: the KPI
// block plus the view's breakdown tables, computed concurrently.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shoplens/internal/entities"
	"shoplens/internal/filters"
	"shoplens/internal/metrics"
	"shoplens/internal/pkg/async"
	"shoplens/internal/tables"
)

// Stakeholder views.
const (
	ViewCEO       = "ceo"
	ViewMarketing = "marketing"
	ViewWebsite   = "website"
	ViewInvestor  = "investor"
)

// Views lists the known views in display order.
var Views = []string{ViewCEO, ViewMarketing, ViewWebsite, ViewInvestor}

// Meta identifies one generated report.
type Meta struct {
	ReportID    string    `json:"report_id"`
	View        string    `json:"view"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Report is one assembled dashboard payload. Tables is keyed by table name;
// a table whose computation failed is replaced by an empty value and the
// failure is listed under Degraded.
type Report struct {
	Meta     Meta              `json:"meta"`
	KPIs     metrics.Report    `json:"kpis"`
	Tables   map[string]any    `json:"tables"`
	Degraded map[string]string `json:"degraded,omitempty"`
}

// Assembler builds reports, fanning table computations over a worker pool.
type Assembler struct {
	pool   *async.Pool
	logger *slog.Logger
}

func NewAssembler(workerCount int, logger *slog.Logger) *Assembler {
	return &Assembler{pool: async.NewPool(workerCount), logger: logger}
}

// KnownView reports whether view names a stakeholder dashboard.
func KnownView(view string) bool {
	for _, v := range Views {
		if v == view {
			return true
		}
	}
	return false
}

// Assemble builds the payload for one view over the filtered collections. The
// unfiltered dataset rides along for the reference tables (catalog, line-item
// refunds) that filtering leaves untouched.
func (a *Assembler) Assemble(ctx context.Context, ds *entities.Dataset, f filters.Filtered, view string) (*Report, error) {
	if !KnownView(view) {
		return nil, fmt.Errorf("report: unknown view %q (known: %v)", view, Views)
	}

	started := time.Now()
	rep := &Report{
		Meta: Meta{
			ReportID:    uuid.NewString(),
			View:        view,
			GeneratedAt: started.UTC(),
		},
		KPIs:   metrics.Compute(f.Orders, f.Sessions, f.Pageviews),
		Tables: map[string]any{},
	}

	tableTasks := a.tasksForView(ds, f, view)
	results := a.pool.Execute(ctx, tableTasks)
	for _, task := range tableTasks {
		res, ok := results[task.Name]
		if !ok || res.Err != nil {
			if rep.Degraded == nil {
				rep.Degraded = map[string]string{}
			}
			reason := "cancelled"
			if ok && res.Err != nil {
				reason = res.Err.Error()
			}
			rep.Degraded[task.Name] = reason
			rep.Tables[task.Name] = []any{}
			a.logger.Warn("table computation degraded", "view", view, "table", task.Name, "reason", reason)
			continue
		}
		rep.Tables[task.Name] = res.Data
	}

	a.logger.Info("report assembled",
		"report_id", rep.Meta.ReportID,
		"view", view,
		"tables", len(rep.Tables),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return rep, nil
}

func (a *Assembler) tasksForView(ds *entities.Dataset, f filters.Filtered, view string) []async.Task {
	switch view {
	case ViewCEO:
		return []async.Task{
			{Name: "sessions_by_month", Execute: func() (any, error) { return tables.SessionsByMonth(f.Sessions), nil }},
			{Name: "orders_by_month", Execute: func() (any, error) { return tables.OrdersByMonth(f.Orders), nil }},
			{Name: "revenue_vs_cogs_by_month", Execute: func() (any, error) { return tables.RevenueVsCogsByMonth(f.Orders), nil }},
			{Name: "first_vs_repeat_orders", Execute: func() (any, error) { return tables.FirstVsRepeatOrders(f.Orders), nil }},
			{Name: "units_sold_by_product", Execute: func() (any, error) { return tables.UnitsSoldByProduct(f.Orders), nil }},
			{Name: "channel_kpi_matrix", Execute: func() (any, error) { return tables.ChannelKPIMatrix(f.Orders, f.Sessions, f.Pageviews), nil }},
			{Name: "channel_kpi_matrix_standardized", Execute: func() (any, error) {
				return tables.Standardize(tables.ChannelKPIMatrix(f.Orders, f.Sessions, f.Pageviews)), nil
			}},
			{Name: "refunds_by_product", Execute: func() (any, error) {
				return tables.RefundsByProduct(ds.Refunds, ds.OrderItems, ds.Products), nil
			}},
			{Name: "refund_amount_by_product", Execute: func() (any, error) { return tables.RefundAmountByProduct(f.Orders), nil }},
		}
	case ViewMarketing:
		return []async.Task{
			{Name: "sessions_by_source", Execute: func() (any, error) { return tables.SessionsBySource(f.Sessions), nil }},
			{Name: "orders_by_source", Execute: func() (any, error) { return tables.OrdersBySource(f.Orders), nil }},
			{Name: "revenue_by_source", Execute: func() (any, error) { return tables.RevenueBySource(f.Orders), nil }},
			{Name: "users_by_device", Execute: func() (any, error) { return tables.UsersByDevice(f.Sessions), nil }},
			{Name: "sessions_by_source_device", Execute: func() (any, error) { return tables.SessionsBySourceDevice(f.Sessions), nil }},
			{Name: "sessions_by_campaign", Execute: func() (any, error) { return tables.SessionsByCampaign(f.Sessions), nil }},
			{Name: "sessions_by_content", Execute: func() (any, error) { return tables.SessionsByContent(f.Sessions), nil }},
			{Name: "bounce_sessions_by_source", Execute: func() (any, error) {
				return tables.BounceSessionsBySource(f.Sessions, f.Pageviews), nil
			}},
			{Name: "bounce_rate_by_source_campaign", Execute: func() (any, error) {
				return tables.BounceRateBySourceCampaign(f.Sessions, f.Pageviews), nil
			}},
			{Name: "bounce_rate_by_source_content", Execute: func() (any, error) {
				return tables.BounceRateBySourceContent(f.Sessions, f.Pageviews), nil
			}},
			{Name: "conversion_by_source_campaign", Execute: func() (any, error) {
				return tables.ConversionBySourceCampaign(f.Sessions, f.Orders), nil
			}},
			{Name: "conversion_by_source_content", Execute: func() (any, error) {
				return tables.ConversionBySourceContent(f.Sessions, f.Orders), nil
			}},
		}
	case ViewWebsite:
		return []async.Task{
			{Name: "funnel_stage_users", Execute: func() (any, error) { return tables.FunnelStageUsers(f.Sessions), nil }},
			{Name: "first_page_visits", Execute: func() (any, error) { return tables.FirstPageVisits(f.Pageviews), nil }},
			{Name: "sessions_by_page", Execute: func() (any, error) { return tables.SessionsByPage(f.Pageviews), nil }},
			{Name: "bounce_rate_by_page", Execute: func() (any, error) { return tables.BounceRateByPage(f.Pageviews), nil }},
			{Name: "avg_duration_by_path", Execute: func() (any, error) { return tables.AvgDurationByPath(f.Pageviews), nil }},
			{Name: "orders_by_path", Execute: func() (any, error) { return tables.OrdersByPath(f.Orders, f.Pageviews), nil }},
			{Name: "session_duration_percentiles", Execute: func() (any, error) {
				return tables.SessionDurationPercentiles(f.Pageviews), nil
			}},
		}
	case ViewInvestor:
		return []async.Task{
			{Name: "quarterly_revenue", Execute: func() (any, error) { return tables.QuarterlyRevenue(f.Orders), nil }},
			{Name: "revenue_by_month", Execute: func() (any, error) { return tables.RevenueByMonth(f.Orders), nil }},
			{Name: "monthly_conversion_rate", Execute: func() (any, error) {
				return tables.MonthlyConversionRate(f.Sessions, f.Orders), nil
			}},
			{Name: "revenue_orders_by_month_product", Execute: func() (any, error) {
				return tables.RevenueOrdersByMonthProduct(f.Orders), nil
			}},
		}
	}
	return nil
}
