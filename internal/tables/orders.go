package tables

import (
	"sort"

	"shoplens/internal/entities"
	"shoplens/internal/timeframe"
)

// Order-kind labels for the first vs repeat split.
const (
	FirstOrderLabel  = "First Order"
	RepeatOrderLabel = "Repeat Order"
)

// MonthProductRow is one month x product cell of the product trend table.
type MonthProductRow struct {
	Month       string  `json:"month"`
	ProductName string  `json:"product_name"`
	Orders      int     `json:"orders"`
	Revenue     float64 `json:"revenue"`
}

// FirstVsRepeatOrders splits orders into first and repeat purchases. An order
// is a first order when its date equals the user's earliest order date in the
// collection; several same-day orders all count as first.
func FirstVsRepeatOrders(orders []entities.Order) []NameCount {
	earliest := map[int64]int64{} // user -> unix nanos of first order
	for _, o := range orders {
		ts := o.OrderDate.UnixNano()
		if cur, ok := earliest[o.UserID]; !ok || ts < cur {
			earliest[o.UserID] = ts
		}
	}
	first, repeat := 0, 0
	for _, o := range orders {
		if o.OrderDate.UnixNano() == earliest[o.UserID] {
			first++
		} else {
			repeat++
		}
	}
	rows := []NameCount{}
	if first > 0 {
		rows = append(rows, NameCount{Name: FirstOrderLabel, Count: first})
	}
	if repeat > 0 {
		rows = append(rows, NameCount{Name: RepeatOrderLabel, Count: repeat})
	}
	return rows
}

// UnitsSoldByProduct sums items purchased per product, best seller first.
func UnitsSoldByProduct(orders []entities.Order) []NameCount {
	units := map[string]int{}
	for _, o := range orders {
		if o.ProductName == "" {
			continue
		}
		units[o.ProductName] += o.ItemsPurchased
	}
	return countRows(units)
}

// RevenueOrdersByMonthProduct buckets order count and gross revenue per
// calendar month and product, chronological then by product name.
func RevenueOrdersByMonthProduct(orders []entities.Order) []MonthProductRow {
	type key struct{ month, product string }
	type tally struct {
		orders  int
		revenue float64
	}
	tallies := map[key]*tally{}
	for _, o := range orders {
		if o.ProductName == "" {
			continue
		}
		k := key{timeframe.MonthKey(o.OrderDate), o.ProductName}
		t := tallies[k]
		if t == nil {
			t = &tally{}
			tallies[k] = t
		}
		t.orders++
		t.revenue += o.PriceUSD
	}
	rows := make([]MonthProductRow, 0, len(tallies))
	for k, t := range tallies {
		rows = append(rows, MonthProductRow{
			Month:       k.month,
			ProductName: k.product,
			Orders:      t.orders,
			Revenue:     round2(t.revenue),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows
}
