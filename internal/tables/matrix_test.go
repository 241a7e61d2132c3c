package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/testsupport"
)

func TestChannelKPIMatrixExcludesUntaggedAndSortsAlphabetically(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := ChannelKPIMatrix(ds.Orders, ds.Sessions, ds.Pageviews)

	require.Len(t, rows, 2)
	assert.Equal(t, "bsearch", rows[0].UTMSource)
	assert.Equal(t, "gsearch", rows[1].UTMSource)

	g := rows[1]
	assert.Equal(t, 2.0, g.Sessions)
	assert.Equal(t, 1.0, g.Users)
	assert.Equal(t, 1.0, g.BounceSessions)
	assert.Equal(t, 50.0, g.BounceRatePct)
	assert.Equal(t, 2.0, g.SessionsPerUser)
	assert.Equal(t, 1.0, g.Orders)
	assert.Equal(t, 50.0, g.Revenue)
	assert.Equal(t, 20.0, g.Cogs)
	assert.Equal(t, 50.0, g.AvgOrderValue)
	assert.Equal(t, 60.0, g.GrossProfitPct)
	assert.Equal(t, 50.0, g.ConversionRatePct)

	b := rows[0]
	assert.Equal(t, 1.0, b.Sessions)
	assert.Zero(t, b.Orders)
	assert.Zero(t, b.Revenue)
	assert.Zero(t, b.AvgOrderValue)
	assert.Zero(t, b.GrossProfitPct)
}

func TestChannelKPIMatrixIncludesOrderOnlySources(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := ChannelKPIMatrix(ds.Orders, nil, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, "gsearch", rows[0].UTMSource)
	assert.Zero(t, rows[0].Sessions)
	assert.Equal(t, 1.0, rows[0].Orders)
	// no sessions for the source, so session-denominated rates stay 0
	assert.Zero(t, rows[0].ConversionRatePct)
}

func TestStandardizeColumnsHaveZeroMean(t *testing.T) {
	ds := testsupport.SampleDataset()
	raw := ChannelKPIMatrix(ds.Orders, ds.Sessions, ds.Pageviews)
	z := Standardize(raw)

	require.Len(t, z, len(raw))
	for _, col := range kpiColumns {
		var sum float64
		for i := range z {
			sum += *col(&z[i])
		}
		assert.InDelta(t, 0, sum, 1e-9)
	}
}

func TestStandardizeConstantColumnIsAllZeros(t *testing.T) {
	rows := []ChannelKPIRow{
		{UTMSource: "a", Sessions: 5, Users: 3},
		{UTMSource: "b", Sessions: 5, Users: 1},
	}
	z := Standardize(rows)

	assert.Zero(t, z[0].Sessions)
	assert.Zero(t, z[1].Sessions)
	assert.Equal(t, 1.0, z[0].Users)
	assert.Equal(t, -1.0, z[1].Users)
}

func TestStandardizeDoesNotMutateInput(t *testing.T) {
	rows := []ChannelKPIRow{
		{UTMSource: "a", Sessions: 5},
		{UTMSource: "b", Sessions: 10},
	}
	_ = Standardize(rows)

	assert.Equal(t, 5.0, rows[0].Sessions)
	assert.Equal(t, 10.0, rows[1].Sessions)
}

func TestStandardizeEmpty(t *testing.T) {
	assert.Empty(t, Standardize(nil))
}
