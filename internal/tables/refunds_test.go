package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/entities"
)

func dayStamp(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestRefundsByProductJoinsThroughOrderItems(t *testing.T) {
	products := []entities.Product{
		{ProductID: 1, ProductName: "Forest Fox Plush"},
		{ProductID: 2, ProductName: "Glacier Bear Plush"},
	}
	items := []entities.OrderItem{
		{OrderItemID: 10, OrderID: 1, ProductID: 1},
		{OrderItemID: 11, OrderID: 1, ProductID: 2},
		{OrderItemID: 12, OrderID: 2, ProductID: 1},
	}
	refunds := []entities.Refund{
		{OrderItemRefundID: 1, OrderItemID: 10, RefundAmountUSD: 20},
		{OrderItemRefundID: 2, OrderItemID: 12, RefundAmountUSD: 15},
		{OrderItemRefundID: 3, OrderItemID: 11, RefundAmountUSD: 5},
		{OrderItemRefundID: 4, OrderItemID: 99, RefundAmountUSD: 5}, // dangling
	}

	rows := RefundsByProduct(refunds, items, products)
	assert.Equal(t, []ProductRefunds{
		{ProductName: "Forest Fox Plush", Refunds: 2, RefundAmountUSD: 35},
		{ProductName: "Glacier Bear Plush", Refunds: 1, RefundAmountUSD: 5},
	}, rows)
}

func TestRefundAmountByProduct(t *testing.T) {
	amt1, amt2 := 12.5, 7.5
	orders := []entities.Order{
		{OrderID: 1, ProductName: "Forest Fox Plush", RefundAmountUSD: &amt1, OrderDate: dayStamp(1)},
		{OrderID: 2, ProductName: "Forest Fox Plush", RefundAmountUSD: &amt2, OrderDate: dayStamp(2)},
		{OrderID: 3, ProductName: "Glacier Bear Plush", OrderDate: dayStamp(3)},
	}

	rows := RefundAmountByProduct(orders)
	require.Len(t, rows, 1)
	assert.Equal(t, NameValue{Name: "Forest Fox Plush", Value: 20}, rows[0])
}
