package tables

import (
	"sort"

	"shoplens/internal/entities"
)

// ProductRefunds is one row of the line-item refund breakdown.
type ProductRefunds struct {
	ProductName     string  `json:"product_name"`
	Refunds         int     `json:"refunds"`
	RefundAmountUSD float64 `json:"refund_amount_usd"`
}

// RefundsByProduct counts and sums line-item refunds per catalog product by
// joining refunds through order items to the product table. Refunds pointing
// at an unknown order item or product are dropped. Largest refund total first.
func RefundsByProduct(refunds []entities.Refund, items []entities.OrderItem, products []entities.Product) []ProductRefunds {
	productName := make(map[int64]string, len(products))
	for _, p := range products {
		productName[p.ProductID] = p.ProductName
	}
	itemProduct := make(map[int64]int64, len(items))
	for _, it := range items {
		itemProduct[it.OrderItemID] = it.ProductID
	}

	type tally struct {
		count  int
		amount float64
	}
	tallies := map[string]*tally{}
	for _, r := range refunds {
		productID, ok := itemProduct[r.OrderItemID]
		if !ok {
			continue
		}
		name, ok := productName[productID]
		if !ok {
			continue
		}
		t := tallies[name]
		if t == nil {
			t = &tally{}
			tallies[name] = t
		}
		t.count++
		t.amount += r.RefundAmountUSD
	}

	rows := make([]ProductRefunds, 0, len(tallies))
	for name, t := range tallies {
		rows = append(rows, ProductRefunds{
			ProductName:     name,
			Refunds:         t.count,
			RefundAmountUSD: round2(t.amount),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RefundAmountUSD != rows[j].RefundAmountUSD {
			return rows[i].RefundAmountUSD > rows[j].RefundAmountUSD
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows
}

// RefundAmountByProduct sums refunded dollars per product off the denormalized
// orders table, biggest refund total first.
func RefundAmountByProduct(orders []entities.Order) []NameValue {
	totals := map[string]float64{}
	for _, o := range orders {
		amt := o.RefundAmount()
		if amt == 0 || o.ProductName == "" {
			continue
		}
		totals[o.ProductName] += amt
	}
	rows := make([]NameValue, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, NameValue{Name: name, Value: round2(total)})
	}
	sortValuesDesc(rows)
	return rows
}
