package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/entities"
	"shoplens/internal/testsupport"
)

func TestImportAndSnapshotRoundtrip(t *testing.T) {
	st := testsupport.SetupTestStore(t)
	ds := testsupport.SampleDataset()
	ctx := context.Background()

	require.NoError(t, st.Import(ctx, ds))

	got, err := st.Snapshot(ctx)
	require.NoError(t, err)

	assert.Len(t, got.Orders, len(ds.Orders))
	assert.Len(t, got.OrderItems, len(ds.OrderItems))
	assert.Len(t, got.Products, len(ds.Products))
	assert.Len(t, got.Pageviews, len(ds.Pageviews))
	assert.Len(t, got.Sessions, len(ds.Sessions))
	assert.Len(t, got.Customers, len(ds.Customers))

	require.NotEmpty(t, got.Orders)
	assert.Equal(t, ds.Orders[0].OrderID, got.Orders[0].OrderID)
	assert.Equal(t, ds.Orders[0].PriceUSD, got.Orders[0].PriceUSD)
	assert.Equal(t, ds.Orders[0].UTMSource, got.Orders[0].UTMSource)
}

func TestImportReplacesPreviousSnapshot(t *testing.T) {
	st := testsupport.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Import(ctx, testsupport.SampleDataset()))

	smaller := testsupport.SampleDataset()
	smaller.Sessions = smaller.Sessions[:1]
	smaller.Pageviews = smaller.Pageviews[:2]
	require.NoError(t, st.Import(ctx, smaller))

	got, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Sessions, 1)
	assert.Len(t, got.Pageviews, 2)
}

func TestImportRejectsInvalidDataset(t *testing.T) {
	st := testsupport.SetupTestStore(t)

	bad := testsupport.SampleDataset()
	bad.Sessions = nil
	err := st.Import(context.Background(), bad)
	require.Error(t, err)

	var schemaErr *entities.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSnapshotEmptyStore(t *testing.T) {
	st := testsupport.SetupTestStore(t)

	got, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Empty(t, got.Orders)
	assert.Empty(t, got.Sessions)
}

func TestPing(t *testing.T) {
	st := testsupport.SetupTestStore(t)
	assert.NoError(t, st.Ping(context.Background()))
}
