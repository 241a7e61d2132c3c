// Package loader reads a dataset from CSV exports described by a YAML
// manifest and turns it into a validated entities.Dataset ready for import.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"shoplens/internal/entities"
)

// Manifest names the CSV file for each source table, relative to the manifest
// directory. Omitted entries fall back to the export's conventional names.
type Manifest struct {
	Orders     string `yaml:"orders"`
	OrderItems string `yaml:"order_items"`
	Refunds    string `yaml:"refunds"`
	Products   string `yaml:"products"`
	Pageviews  string `yaml:"pageviews"`
	Sessions   string `yaml:"sessions"`
	Customers  string `yaml:"customers"`

	dir string
}

func defaultManifest() Manifest {
	return Manifest{
		Orders:     "orders.csv",
		OrderItems: "order_items.csv",
		Refunds:    "order_item_refunds.csv",
		Products:   "products.csv",
		Pageviews:  "website_pageviews.csv",
		Sessions:   "website_sessions.csv",
		Customers:  "users.csv",
	}
}

// ReadManifest parses the YAML manifest at path. Fields left empty keep their
// conventional defaults.
func ReadManifest(path string) (Manifest, error) {
	m := defaultManifest()
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("loader: read manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("loader: parse manifest %s: %w", path, err)
	}
	def := defaultManifest()
	if m.Orders == "" {
		m.Orders = def.Orders
	}
	if m.OrderItems == "" {
		m.OrderItems = def.OrderItems
	}
	if m.Refunds == "" {
		m.Refunds = def.Refunds
	}
	if m.Products == "" {
		m.Products = def.Products
	}
	if m.Pageviews == "" {
		m.Pageviews = def.Pageviews
	}
	if m.Sessions == "" {
		m.Sessions = def.Sessions
	}
	if m.Customers == "" {
		m.Customers = def.Customers
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// DirManifest builds a manifest over a directory holding conventionally named
// CSV exports, no YAML file needed.
func DirManifest(dir string) Manifest {
	m := defaultManifest()
	m.dir = dir
	return m
}

// Load reads every table the manifest names and returns the validated dataset.
func Load(m Manifest) (*entities.Dataset, error) {
	ds := &entities.Dataset{}
	var err error
	if ds.Orders, err = loadTable(m, m.Orders, "orders", parseOrder); err != nil {
		return nil, err
	}
	if ds.OrderItems, err = loadTable(m, m.OrderItems, "order_items", parseOrderItem); err != nil {
		return nil, err
	}
	if ds.Refunds, err = loadTable(m, m.Refunds, "refunds", parseRefund); err != nil {
		return nil, err
	}
	if ds.Products, err = loadTable(m, m.Products, "products", parseProduct); err != nil {
		return nil, err
	}
	if ds.Pageviews, err = loadTable(m, m.Pageviews, "pageviews", parsePageview); err != nil {
		return nil, err
	}
	if ds.Sessions, err = loadTable(m, m.Sessions, "sessions", parseSession); err != nil {
		return nil, err
	}
	if ds.Customers, err = loadTable(m, m.Customers, "customers", parseCustomer); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// row exposes one CSV record by column name.
type row struct {
	entity string
	index  map[string]int
	record []string
	line   int
}

func (r row) get(col string) (string, error) {
	i, ok := r.index[col]
	if !ok {
		return "", &entities.SchemaError{Entity: r.entity, Field: col, Reason: "column missing from header"}
	}
	if i >= len(r.record) {
		return "", &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d too short", r.line)}
	}
	return strings.TrimSpace(r.record[i]), nil
}

func (r row) getInt(col string) (int64, error) {
	s, err := r.get(col)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d: not an integer: %q", r.line, s)}
	}
	return v, nil
}

func (r row) getFloat(col string) (float64, error) {
	s, err := r.get(col)
	if err != nil {
		return 0, err
	}
	if s == "" || strings.EqualFold(s, "NULL") {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d: not a number: %q", r.line, s)}
	}
	return v, nil
}

// getNullableFloat returns nil for empty or literal NULL values.
func (r row) getNullableFloat(col string) (*float64, error) {
	s, err := r.get(col)
	if err != nil {
		return nil, err
	}
	if s == "" || strings.EqualFold(s, "NULL") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d: not a number: %q", r.line, s)}
	}
	return &v, nil
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func (r row) getTime(col string) (time.Time, error) {
	s, err := r.get(col)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timeLayouts {
		if t, perr := time.ParseInLocation(layout, s, time.UTC); perr == nil {
			return t, nil
		}
	}
	return time.Time{}, &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d: unrecognized timestamp %q", r.line, s)}
}

func (r row) getBool(col string) (bool, error) {
	s, err := r.get(col)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true, nil
	case "", "0", "false", "no", "null":
		return false, nil
	}
	return false, &entities.SchemaError{Entity: r.entity, Field: col, Reason: fmt.Sprintf("row %d: not a boolean: %q", r.line, s)}
}

func loadTable[T any](m Manifest, file, entity string, parse func(row) (T, error)) ([]T, error) {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, file)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, &entities.SchemaError{Entity: entity, Reason: fmt.Sprintf("cannot read header of %s: %v", path, err)}
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}

	out := []T{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &entities.SchemaError{Entity: entity, Reason: fmt.Sprintf("read %s line %d: %v", path, line, err)}
		}
		item, err := parse(row{entity: entity, index: index, record: record, line: line})
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func parseOrder(r row) (entities.Order, error) {
	var o entities.Order
	var err error
	if o.OrderID, err = r.getInt("order_id"); err != nil {
		return o, err
	}
	if o.WebsiteSessionID, err = r.getInt("website_session_id"); err != nil {
		return o, err
	}
	if o.UserID, err = r.getInt("user_id"); err != nil {
		return o, err
	}
	if o.OrderDate, err = r.getTime("order_date"); err != nil {
		return o, err
	}
	if o.ProductName, err = r.get("product_name"); err != nil {
		return o, err
	}
	items, err := r.getInt("items_purchased")
	if err != nil {
		return o, err
	}
	o.ItemsPurchased = int(items)
	if o.PriceUSD, err = r.getFloat("price_usd"); err != nil {
		return o, err
	}
	if o.CogsUSD, err = r.getFloat("cogs_usd"); err != nil {
		return o, err
	}
	if o.RefundAmountUSD, err = r.getNullableFloat("refund_amount_usd"); err != nil {
		return o, err
	}
	if o.UTMSource, err = r.get("utm_source"); err != nil {
		return o, err
	}
	if o.UTMCampaign, err = r.get("utm_campaign"); err != nil {
		return o, err
	}
	if o.UTMContent, err = r.get("utm_content"); err != nil {
		return o, err
	}
	if o.DeviceType, err = r.get("device_type"); err != nil {
		return o, err
	}
	return o, nil
}

func parseOrderItem(r row) (entities.OrderItem, error) {
	var oi entities.OrderItem
	var err error
	if oi.OrderItemID, err = r.getInt("order_item_id"); err != nil {
		return oi, err
	}
	if oi.OrderID, err = r.getInt("order_id"); err != nil {
		return oi, err
	}
	if oi.ProductID, err = r.getInt("product_id"); err != nil {
		return oi, err
	}
	return oi, nil
}

func parseRefund(r row) (entities.Refund, error) {
	var rf entities.Refund
	var err error
	if rf.OrderItemRefundID, err = r.getInt("order_item_refund_id"); err != nil {
		return rf, err
	}
	if rf.OrderItemID, err = r.getInt("order_item_id"); err != nil {
		return rf, err
	}
	if rf.RefundAmountUSD, err = r.getFloat("refund_amount_usd"); err != nil {
		return rf, err
	}
	return rf, nil
}

func parseProduct(r row) (entities.Product, error) {
	var p entities.Product
	var err error
	if p.ProductID, err = r.getInt("product_id"); err != nil {
		return p, err
	}
	if p.ProductName, err = r.get("product_name"); err != nil {
		return p, err
	}
	return p, nil
}

func parsePageview(r row) (entities.Pageview, error) {
	var pv entities.Pageview
	var err error
	if pv.WebsitePageviewID, err = r.getInt("website_pageview_id"); err != nil {
		return pv, err
	}
	if pv.WebsiteSessionID, err = r.getInt("website_session_id"); err != nil {
		return pv, err
	}
	if pv.PageviewURL, err = r.get("pageview_url"); err != nil {
		return pv, err
	}
	if pv.CreatedAt, err = r.getTime("created_at"); err != nil {
		return pv, err
	}
	return pv, nil
}

func parseSession(r row) (entities.Session, error) {
	var s entities.Session
	var err error
	if s.WebsiteSessionID, err = r.getInt("website_session_id"); err != nil {
		return s, err
	}
	if s.UserID, err = r.getInt("user_id"); err != nil {
		return s, err
	}
	if s.CreatedAt, err = r.getTime("created_at"); err != nil {
		return s, err
	}
	if s.UTMSource, err = r.get("utm_source"); err != nil {
		return s, err
	}
	if s.UTMCampaign, err = r.get("utm_campaign"); err != nil {
		return s, err
	}
	if s.UTMContent, err = r.get("utm_content"); err != nil {
		return s, err
	}
	if s.DeviceType, err = r.get("device_type"); err != nil {
		return s, err
	}
	if s.IsRepeatSession, err = r.getBool("is_repeat_session"); err != nil {
		return s, err
	}
	if s.IsBounce, err = r.getBool("is_bounce"); err != nil {
		return s, err
	}
	if s.FunnelStage, err = r.get("funnel_stage"); err != nil {
		return s, err
	}
	return s, nil
}

func parseCustomer(r row) (entities.Customer, error) {
	var c entities.Customer
	var err error
	if c.UserID, err = r.getInt("user_id"); err != nil {
		return c, err
	}
	if c.CreatedAt, err = r.getTime("created_at"); err != nil {
		return c, err
	}
	return c, nil
}
