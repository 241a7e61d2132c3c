// Package testsupport provides shared fixtures for package tests: an
// in-memory store and a small handcrafted dataset.
package testsupport

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shoplens/internal/entities"
	"shoplens/internal/store"
)

var dbCounter atomic.Int64

// GetLogger returns a quiet logger for tests.
func GetLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetupTestStore opens a migrated in-memory store unique to the calling test.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access test connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	st := store.OpenWithDB(db, GetLogger())
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return st
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 10, 0, 0, 0, time.UTC)
}

// SampleDataset is four sessions across two users with one $50 order. With no
// filters it yields a 25% conversion rate, 50% repeat session rate and $30
// gross profit.
func SampleDataset() *entities.Dataset {
	return &entities.Dataset{
		Orders: []entities.Order{
			{
				OrderID: 1, WebsiteSessionID: 1, UserID: 1, OrderDate: day(1),
				ProductName: "Forest Fox Plush", ItemsPurchased: 1,
				PriceUSD: 50, CogsUSD: 20,
				UTMSource: "gsearch", UTMCampaign: "nonbrand", UTMContent: "g_ad_1",
				DeviceType: "desktop",
			},
		},
		OrderItems: []entities.OrderItem{
			{OrderItemID: 1, OrderID: 1, ProductID: 1},
		},
		Refunds:  []entities.Refund{},
		Products: []entities.Product{{ProductID: 1, ProductName: "Forest Fox Plush"}},
		Pageviews: []entities.Pageview{
			{WebsitePageviewID: 1, WebsiteSessionID: 1, PageviewURL: "/home", CreatedAt: day(1)},
			{WebsitePageviewID: 2, WebsiteSessionID: 1, PageviewURL: "/cart", CreatedAt: day(1).Add(2 * time.Minute)},
			{WebsitePageviewID: 3, WebsiteSessionID: 2, PageviewURL: "/home", CreatedAt: day(2)},
			{WebsitePageviewID: 4, WebsiteSessionID: 3, PageviewURL: "/home", CreatedAt: day(3)},
			{WebsitePageviewID: 5, WebsiteSessionID: 3, PageviewURL: "/products", CreatedAt: day(3).Add(4 * time.Minute)},
			{WebsitePageviewID: 6, WebsiteSessionID: 4, PageviewURL: "/home", CreatedAt: day(4)},
		},
		Sessions: []entities.Session{
			{
				WebsiteSessionID: 1, UserID: 1, CreatedAt: day(1),
				UTMSource: "gsearch", UTMCampaign: "nonbrand", UTMContent: "g_ad_1",
				DeviceType: "desktop", FunnelStage: entities.StageConvertedSession,
			},
			{
				WebsiteSessionID: 2, UserID: 1, CreatedAt: day(2),
				UTMSource: "gsearch", UTMCampaign: "nonbrand", UTMContent: "g_ad_2",
				DeviceType: "mobile", IsRepeatSession: true, IsBounce: true,
				FunnelStage: entities.StageLandingBounce,
			},
			{
				WebsiteSessionID: 3, UserID: 2, CreatedAt: day(3),
				UTMSource: "bsearch", UTMCampaign: "brand", UTMContent: "b_ad_1",
				DeviceType: "desktop", FunnelStage: entities.StageDroppedAtProduct,
			},
			{
				WebsiteSessionID: 4, UserID: 2, CreatedAt: day(4),
				UTMSource: "NULL", UTMCampaign: "NULL", UTMContent: "NULL",
				DeviceType: "mobile", IsRepeatSession: true, IsBounce: true,
				FunnelStage: entities.StageLandingBounce,
			},
		},
		Customers: []entities.Customer{
			{UserID: 1, CreatedAt: day(1)},
			{UserID: 2, CreatedAt: day(3)},
		},
	}
}
