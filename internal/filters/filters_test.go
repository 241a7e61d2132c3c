package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/testsupport"
	"shoplens/internal/timeframe"
)

func TestApplyZeroCriteriaIsIdentity(t *testing.T) {
	ds := testsupport.SampleDataset()
	f := Apply(ds, Criteria{})

	assert.Len(t, f.Orders, len(ds.Orders))
	assert.Len(t, f.Pageviews, len(ds.Pageviews))
	assert.Len(t, f.Sessions, len(ds.Sessions))
}

func TestApplyIsIdempotent(t *testing.T) {
	ds := testsupport.SampleDataset()
	c := Criteria{Sources: NewStringSet("gsearch")}

	once := Apply(ds, c)
	twice := Apply(once.Dataset(ds), c)

	assert.Equal(t, once.Orders, twice.Orders)
	assert.Equal(t, once.Pageviews, twice.Pageviews)
	assert.Equal(t, once.Sessions, twice.Sessions)
}

func TestApplySourceFilter(t *testing.T) {
	ds := testsupport.SampleDataset()
	f := Apply(ds, Criteria{Sources: NewStringSet("gsearch")})

	assert.Len(t, f.Orders, 1)
	require.Len(t, f.Sessions, 2)
	for _, s := range f.Sessions {
		assert.Equal(t, "gsearch", s.UTMSource)
	}
	// pageviews carry no attribution, so a source filter leaves them alone
	assert.Len(t, f.Pageviews, len(ds.Pageviews))
}

func TestApplyDeviceFilterHitsOrdersAndSessions(t *testing.T) {
	ds := testsupport.SampleDataset()
	f := Apply(ds, Criteria{Devices: NewStringSet("mobile")})

	assert.Empty(t, f.Orders)
	assert.Len(t, f.Sessions, 2)
}

func TestApplyDateRangeReachesSessionsThroughPageviews(t *testing.T) {
	ds := testsupport.SampleDataset()
	dr, err := timeframe.Parse("2024-03-01", "2024-03-02")
	require.NoError(t, err)

	f := Apply(ds, Criteria{DateRange: dr})

	// only sessions whose pageviews land in range survive
	assert.Len(t, f.Pageviews, 3)
	require.Len(t, f.Sessions, 2)
	ids := []int64{f.Sessions[0].WebsiteSessionID, f.Sessions[1].WebsiteSessionID}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Len(t, f.Orders, 1)
}

func TestApplyDateRangeDropsSessionsWithoutPageviewsInRange(t *testing.T) {
	ds := testsupport.SampleDataset()
	dr, err := timeframe.Parse("2025-01-01", "2025-01-31")
	require.NoError(t, err)

	f := Apply(ds, Criteria{DateRange: dr})

	assert.Empty(t, f.Orders)
	assert.Empty(t, f.Pageviews)
	assert.Empty(t, f.Sessions)
}

func TestApplyCombinedCriteria(t *testing.T) {
	ds := testsupport.SampleDataset()
	f := Apply(ds, Criteria{
		Sources: NewStringSet("gsearch"),
		Devices: NewStringSet("desktop"),
	})

	require.Len(t, f.Sessions, 1)
	assert.Equal(t, int64(1), f.Sessions[0].WebsiteSessionID)
	assert.Len(t, f.Orders, 1)
}

func TestStringSetSemantics(t *testing.T) {
	assert.True(t, StringSet(nil).Allows("anything"))
	assert.True(t, NewStringSet().Allows("anything"))

	s := NewStringSet("a", "b", "")
	assert.True(t, s.Allows("a"))
	assert.False(t, s.Allows("c"))
	assert.Equal(t, []string{"a", "b"}, s.Values())
}

func TestCollectOptions(t *testing.T) {
	ds := testsupport.SampleDataset()
	opts := CollectOptions(ds)

	assert.Equal(t, []string{"Forest Fox Plush"}, opts.Products)
	assert.Equal(t, []string{"bsearch", "gsearch"}, opts.Sources)
	assert.Equal(t, []string{"desktop", "mobile"}, opts.Devices)
	assert.Equal(t, []string{"nonbrand"}, opts.Campaigns)
	require.NotNil(t, opts.MinDate)
	require.NotNil(t, opts.MaxDate)
	assert.False(t, opts.MinDate.After(*opts.MaxDate))
}
