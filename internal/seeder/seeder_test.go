package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/entities"
	"shoplens/internal/testsupport"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42)
	b := Generate(42)

	assert.Equal(t, a.Orders, b.Orders)
	assert.Equal(t, a.Sessions, b.Sessions)
	assert.Equal(t, a.Pageviews, b.Pageviews)
}

func TestGenerateProducesValidDataset(t *testing.T) {
	ds := Generate(42)
	require.NoError(t, ds.Validate())

	assert.NotEmpty(t, ds.Orders)
	assert.NotEmpty(t, ds.Sessions)
	assert.NotEmpty(t, ds.Pageviews)
	assert.Len(t, ds.Products, 4)

	// every order references an existing session
	sessions := map[int64]struct{}{}
	for _, s := range ds.Sessions {
		sessions[s.WebsiteSessionID] = struct{}{}
	}
	for _, o := range ds.Orders {
		_, ok := sessions[o.WebsiteSessionID]
		assert.True(t, ok, "order %d references unknown session", o.OrderID)
	}

	// funnel stages use the known labels
	known := map[string]bool{}
	for _, stage := range entities.FunnelStageOrder {
		known[stage] = true
	}
	for _, s := range ds.Sessions {
		assert.True(t, known[s.FunnelStage], "unknown stage %q", s.FunnelStage)
	}
}

func TestSeedImportsIntoStore(t *testing.T) {
	st := testsupport.SetupTestStore(t)
	require.NoError(t, Seed(context.Background(), st, testsupport.GetLogger(), 42))

	got, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, got.Orders)
	assert.NotEmpty(t, got.Sessions)
}
