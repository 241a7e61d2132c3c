// Package seeder generates a deterministic demo dataset so a fresh install
// has dashboards worth looking at.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"shoplens/internal/entities"
	"shoplens/internal/store"
)

var (
	products = []string{"Forest Fox Plush", "Glacier Bear Plush", "Desert Hare Plush", "River Otter Plush"}
	sources  = []string{"gsearch", "bsearch", "socialbook", "NULL"}
	campaign = map[string]string{"gsearch": "nonbrand", "bsearch": "brand", "socialbook": "desktop_targeted", "NULL": "NULL"}
	contents = []string{"g_ad_1", "g_ad_2", "b_ad_1", "social_ad_1"}
	devices  = []string{"desktop", "mobile"}
	pages    = []string{"/home", "/products", "/the-forest-fox", "/cart", "/shipping", "/billing", "/thank-you"}
)

// Seed fills the store with a generated dataset. The same seed always
// produces the same data.
func Seed(ctx context.Context, st *store.Store, logger *slog.Logger, seed uint64) error {
	ds := Generate(seed)
	if err := st.Import(ctx, ds); err != nil {
		return fmt.Errorf("seeder: %w", err)
	}
	logger.Info("demo data seeded", "sessions", len(ds.Sessions), "orders", len(ds.Orders))
	return nil
}

// Generate builds the demo dataset without touching storage.
func Generate(seed uint64) *entities.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	ds := &entities.Dataset{
		Orders:     []entities.Order{},
		OrderItems: []entities.OrderItem{},
		Refunds:    []entities.Refund{},
		Products:   []entities.Product{},
		Pageviews:  []entities.Pageview{},
		Sessions:   []entities.Session{},
		Customers:  []entities.Customer{},
	}
	for i, name := range products {
		ds.Products = append(ds.Products, entities.Product{ProductID: int64(i + 1), ProductName: name})
	}

	const userCount = 150
	for u := 1; u <= userCount; u++ {
		ds.Customers = append(ds.Customers, entities.Customer{
			UserID:    int64(u),
			CreatedAt: start.AddDate(0, 0, rng.IntN(330)),
		})
	}

	var (
		sessionID  int64
		pageviewID int64
		orderID    int64
		itemID     int64
		refundID   int64
	)
	sessionsPerUser := map[int64]int{}

	const sessionCount = 600
	for i := 0; i < sessionCount; i++ {
		sessionID++
		userID := int64(rng.IntN(userCount) + 1)
		sessionsPerUser[userID]++
		src := sources[rng.IntN(len(sources))]
		device := devices[rng.IntN(len(devices))]
		createdAt := start.AddDate(0, 0, rng.IntN(365)).Add(time.Duration(rng.IntN(86400)) * time.Second)

		depth := 1 + rng.IntN(len(pages))
		for p := 0; p < depth; p++ {
			pageviewID++
			ds.Pageviews = append(ds.Pageviews, entities.Pageview{
				WebsitePageviewID: pageviewID,
				WebsiteSessionID:  sessionID,
				PageviewURL:       pages[p],
				CreatedAt:         createdAt.Add(time.Duration(p) * time.Duration(20+rng.IntN(100)) * time.Second),
			})
		}

		converted := depth == len(pages)
		ds.Sessions = append(ds.Sessions, entities.Session{
			WebsiteSessionID: sessionID,
			UserID:           userID,
			CreatedAt:        createdAt,
			UTMSource:        src,
			UTMCampaign:      campaign[src],
			UTMContent:       contents[rng.IntN(len(contents))],
			DeviceType:       device,
			IsRepeatSession:  sessionsPerUser[userID] > 1,
			IsBounce:         depth == 1,
			FunnelStage:      stageForDepth(depth),
		})

		if !converted {
			continue
		}

		orderID++
		productIdx := rng.IntN(len(products))
		items := 1 + rng.IntN(2)
		price := float64(items) * (39.99 + float64(productIdx)*10)
		cogs := price * 0.4
		var refundAmt *float64
		if rng.IntN(20) == 0 {
			amt := price * 0.5
			refundAmt = &amt
		}
		ds.Orders = append(ds.Orders, entities.Order{
			OrderID:          orderID,
			WebsiteSessionID: sessionID,
			UserID:           userID,
			OrderDate:        createdAt.Add(time.Hour),
			ProductName:      products[productIdx],
			ItemsPurchased:   items,
			PriceUSD:         price,
			CogsUSD:          cogs,
			RefundAmountUSD:  refundAmt,
			UTMSource:        src,
			UTMCampaign:      campaign[src],
			UTMContent:       contents[rng.IntN(len(contents))],
			DeviceType:       device,
		})
		for n := 0; n < items; n++ {
			itemID++
			ds.OrderItems = append(ds.OrderItems, entities.OrderItem{
				OrderItemID: itemID,
				OrderID:     orderID,
				ProductID:   int64(productIdx + 1),
			})
			if refundAmt != nil && n == 0 {
				refundID++
				ds.Refunds = append(ds.Refunds, entities.Refund{
					OrderItemRefundID: refundID,
					OrderItemID:       itemID,
					RefundAmountUSD:   *refundAmt,
				})
			}
		}
	}

	return ds
}

func stageForDepth(depth int) string {
	switch {
	case depth == 1:
		return entities.StageLandingBounce
	case depth <= 3:
		return entities.StageDroppedAtProduct
	case depth == 4:
		return entities.StageDroppedAtCart
	case depth < len(pages):
		return entities.StageDroppedAtCheckout
	default:
		return entities.StageConvertedSession
	}
}
