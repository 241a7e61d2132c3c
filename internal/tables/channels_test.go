package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/testsupport"
)

func TestSessionsBySourceExcludesUntagged(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := SessionsBySource(ds.Sessions)

	require.Len(t, rows, 2)
	assert.Equal(t, NameCount{Name: "gsearch", Count: 2}, rows[0])
	assert.Equal(t, NameCount{Name: "bsearch", Count: 1}, rows[1])
}

func TestRevenueBySourceSortsDescending(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := RevenueBySource(ds.Orders)

	require.Len(t, rows, 1)
	assert.Equal(t, NameValue{Name: "gsearch", Value: 50}, rows[0])
}

func TestUsersByDeviceTitleCasesLabels(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := UsersByDevice(ds.Sessions)

	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []NameCount{
		{Name: "Desktop", Count: 2},
		{Name: "Mobile", Count: 2},
	}, rows)
}

func TestSessionsBySourceDevice(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := SessionsBySourceDevice(ds.Sessions)

	assert.Equal(t, []SourceDeviceSessions{
		{UTMSource: "bsearch", DeviceType: "Desktop", Sessions: 1},
		{UTMSource: "gsearch", DeviceType: "Desktop", Sessions: 1},
		{UTMSource: "gsearch", DeviceType: "Mobile", Sessions: 1},
	}, rows)
}

func TestBounceRateBySourceCampaign(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := BounceRateBySourceCampaign(ds.Sessions, ds.Pageviews)

	require.Len(t, rows, 2)
	assert.Equal(t, ChannelSplitRate{
		UTMSource: "bsearch", Split: "brand", Sessions: 1, Matches: 0, RatePct: 0,
	}, rows[0])
	assert.Equal(t, ChannelSplitRate{
		UTMSource: "gsearch", Split: "nonbrand", Sessions: 2, Matches: 1, RatePct: 50,
	}, rows[1])
}

func TestConversionBySourceCampaign(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := ConversionBySourceCampaign(ds.Sessions, ds.Orders)

	require.Len(t, rows, 2)
	assert.Equal(t, ChannelSplitRate{
		UTMSource: "gsearch", Split: "nonbrand", Sessions: 2, Matches: 1, RatePct: 50,
	}, rows[1])
}

func TestBounceSessionsBySource(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := BounceSessionsBySource(ds.Sessions, ds.Pageviews)

	// session 2 (gsearch) bounced; session 4 bounced but is untagged
	assert.Equal(t, []NameCount{{Name: "gsearch", Count: 1}}, rows)
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Desktop", DisplayLabel("desktop"))
	assert.Equal(t, "Mobile Phone", DisplayLabel("mobile phone"))
}
