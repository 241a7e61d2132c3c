// Package entities defines the typed row models for the seven source tables
// of the storefront dataset and the Dataset snapshot that bundles them.
//
// Rows are immutable once loaded: the filter and metric layers only ever
// produce new slices, never mutate these.
package entities

import (
	"fmt"
	"strings"
	"time"
)

// Funnel stage labels as they appear in the sessions table, in funnel order.
const (
	StageLandingBounce     = "Landing Bounce"
	StageDroppedAtProduct  = "Dropped at Product"
	StageDroppedAtCheckout = "Dropped at Checkout"
	StageDroppedAtCart     = "Dropped at Cart"
	StageConvertedSession  = "Converted Session"
)

// FunnelStageOrder is the fixed display order for funnel stage breakdowns.
var FunnelStageOrder = []string{
	StageLandingBounce,
	StageDroppedAtProduct,
	StageDroppedAtCheckout,
	StageDroppedAtCart,
	StageConvertedSession,
}

// Order is one purchase. The orders table is denormalized: product name,
// attribution and device ride along on every row.
type Order struct {
	OrderID          int64     `gorm:"primaryKey;column:order_id" json:"order_id"`
	WebsiteSessionID int64     `gorm:"column:website_session_id;index" json:"website_session_id"`
	UserID           int64     `gorm:"column:user_id;index" json:"user_id"`
	OrderDate        time.Time `gorm:"column:order_date" json:"order_date"`
	ProductName      string    `gorm:"column:product_name" json:"product_name"`
	ItemsPurchased   int       `gorm:"column:items_purchased" json:"items_purchased"`
	PriceUSD         float64   `gorm:"column:price_usd" json:"price_usd"`
	CogsUSD          float64   `gorm:"column:cogs_usd" json:"cogs_usd"`
	RefundAmountUSD  *float64  `gorm:"column:refund_amount_usd" json:"refund_amount_usd"`
	UTMSource        string    `gorm:"column:utm_source" json:"utm_source"`
	UTMCampaign      string    `gorm:"column:utm_campaign" json:"utm_campaign"`
	UTMContent       string    `gorm:"column:utm_content" json:"utm_content"`
	DeviceType       string    `gorm:"column:device_type" json:"device_type"`
}

// RefundAmount returns the refund with nil treated as zero.
func (o Order) RefundAmount() float64 {
	if o.RefundAmountUSD == nil {
		return 0
	}
	return *o.RefundAmountUSD
}

// OrderItem links an order to the product catalog, one row per line item.
type OrderItem struct {
	OrderItemID int64 `gorm:"primaryKey;column:order_item_id" json:"order_item_id"`
	OrderID     int64 `gorm:"column:order_id;index" json:"order_id"`
	ProductID   int64 `gorm:"column:product_id;index" json:"product_id"`
}

// Refund is a line-item refund. Several refunds may reference one order item.
type Refund struct {
	OrderItemRefundID int64   `gorm:"primaryKey;column:order_item_refund_id" json:"order_item_refund_id"`
	OrderItemID       int64   `gorm:"column:order_item_id;index" json:"order_item_id"`
	RefundAmountUSD   float64 `gorm:"column:refund_amount_usd" json:"refund_amount_usd"`
}

// Product is one catalog entry.
type Product struct {
	ProductID   int64  `gorm:"primaryKey;column:product_id" json:"product_id"`
	ProductName string `gorm:"column:product_name" json:"product_name"`
}

// Pageview is one recorded page view within a session.
type Pageview struct {
	WebsitePageviewID int64     `gorm:"primaryKey;column:website_pageview_id" json:"website_pageview_id"`
	WebsiteSessionID  int64     `gorm:"column:website_session_id;index" json:"website_session_id"`
	PageviewURL       string    `gorm:"column:pageview_url" json:"pageview_url"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
}

// Session is one website session with its attribution tags and the
// pre-labelled funnel stage.
type Session struct {
	WebsiteSessionID int64     `gorm:"primaryKey;column:website_session_id" json:"website_session_id"`
	UserID           int64     `gorm:"column:user_id;index" json:"user_id"`
	CreatedAt        time.Time `gorm:"column:session_created_at" json:"session_created_at"`
	UTMSource        string    `gorm:"column:utm_source" json:"utm_source"`
	UTMCampaign      string    `gorm:"column:utm_campaign" json:"utm_campaign"`
	UTMContent       string    `gorm:"column:utm_content" json:"utm_content"`
	DeviceType       string    `gorm:"column:device_type" json:"device_type"`
	IsRepeatSession  bool      `gorm:"column:is_repeat_session" json:"is_repeat_session"`
	IsBounce         bool      `gorm:"column:is_bounce" json:"is_bounce"`
	FunnelStage      string    `gorm:"column:funnel_stage" json:"funnel_stage"`
}

// Customer is one known user. Only the key matters to the metric layer.
type Customer struct {
	UserID    int64     `gorm:"primaryKey;column:user_id" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// IsMissingUTM reports whether a UTM tag value means "absent": empty,
// whitespace, or the literal token NULL in any casing (the raw exports use it).
func IsMissingUTM(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "NULL")
}

// Dataset is one immutable snapshot of all source tables, loaded once per
// report request.
type Dataset struct {
	Orders     []Order
	OrderItems []OrderItem
	Refunds    []Refund
	Products   []Product
	Pageviews  []Pageview
	Sessions   []Session
	Customers  []Customer
}

// SchemaError identifies a structural problem with an entity collection.
// It is the only error class that aborts report generation.
type SchemaError struct {
	Entity string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema error: entity %q: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("schema error: entity %q, field %q: %s", e.Entity, e.Field, e.Reason)
}

func missingCollection(entity string) *SchemaError {
	return &SchemaError{Entity: entity, Reason: "collection is absent"}
}

func missingKey(entity, field string, row int) *SchemaError {
	return &SchemaError{Entity: entity, Field: field, Reason: fmt.Sprintf("missing key value at row %d", row)}
}

// Validate checks that every collection is present and that every row carries
// its key columns. Empty collections are valid; nil ones are not, so a loader
// that skipped a table entirely is caught here rather than surfacing as a
// silently empty report.
func (d *Dataset) Validate() error {
	if d == nil {
		return &SchemaError{Entity: "dataset", Reason: "dataset is nil"}
	}
	switch {
	case d.Orders == nil:
		return missingCollection("orders")
	case d.OrderItems == nil:
		return missingCollection("order_items")
	case d.Refunds == nil:
		return missingCollection("refunds")
	case d.Products == nil:
		return missingCollection("products")
	case d.Pageviews == nil:
		return missingCollection("pageviews")
	case d.Sessions == nil:
		return missingCollection("sessions")
	case d.Customers == nil:
		return missingCollection("customers")
	}

	for i, o := range d.Orders {
		if o.OrderID == 0 {
			return missingKey("orders", "order_id", i)
		}
		if o.OrderDate.IsZero() {
			return missingKey("orders", "order_date", i)
		}
	}
	for i, oi := range d.OrderItems {
		if oi.OrderItemID == 0 {
			return missingKey("order_items", "order_item_id", i)
		}
		if oi.OrderID == 0 {
			return missingKey("order_items", "order_id", i)
		}
	}
	for i, r := range d.Refunds {
		if r.OrderItemRefundID == 0 {
			return missingKey("refunds", "order_item_refund_id", i)
		}
		if r.OrderItemID == 0 {
			return missingKey("refunds", "order_item_id", i)
		}
	}
	for i, p := range d.Products {
		if p.ProductID == 0 {
			return missingKey("products", "product_id", i)
		}
	}
	for i, pv := range d.Pageviews {
		if pv.WebsitePageviewID == 0 {
			return missingKey("pageviews", "website_pageview_id", i)
		}
		if pv.WebsiteSessionID == 0 {
			return missingKey("pageviews", "website_session_id", i)
		}
		if pv.CreatedAt.IsZero() {
			return missingKey("pageviews", "created_at", i)
		}
	}
	for i, s := range d.Sessions {
		if s.WebsiteSessionID == 0 {
			return missingKey("sessions", "website_session_id", i)
		}
	}
	for i, c := range d.Customers {
		if c.UserID == 0 {
			return missingKey("customers", "user_id", i)
		}
	}
	return nil
}
