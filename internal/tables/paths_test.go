package tables

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/entities"
	"shoplens/internal/testsupport"
)

func pv(id, sessionID int64, url string, at time.Time) entities.Pageview {
	return entities.Pageview{WebsitePageviewID: id, WebsiteSessionID: sessionID, PageviewURL: url, CreatedAt: at}
}

func TestBuildSessionPathsJoinsInVisitOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	paths := BuildSessionPaths([]entities.Pageview{
		pv(2, 1, "/cart", base.Add(time.Minute)),
		pv(1, 1, "/home", base),
		pv(3, 2, "/home", base),
	})

	assert.Equal(t, "/home → /cart", paths[1])
	assert.Equal(t, "/home", paths[2])
}

func TestBuildSessionPathsBreaksTimestampTiesByID(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	paths := BuildSessionPaths([]entities.Pageview{
		pv(9, 1, "/b", base),
		pv(4, 1, "/a", base),
	})

	assert.Equal(t, "/a → /b", paths[1])
}

func TestTruncatePath(t *testing.T) {
	short := "/home → /cart"
	assert.Equal(t, short, TruncatePath(short))

	long := strings.Repeat("x", 70)
	got := TruncatePath(long)
	assert.Equal(t, strings.Repeat("x", 60)+"...", got)
}

func TestOrdersByPathAttributesThroughSession(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := OrdersByPath(ds.Orders, ds.Pageviews)

	require.Len(t, rows, 1)
	assert.Equal(t, NameCount{Name: "/home → /cart", Count: 1}, rows[0])
}

func TestOrdersByPathDropsOrdersWithoutPageviews(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := OrdersByPath(ds.Orders, nil)
	assert.Empty(t, rows)
}

func TestFirstPageVisits(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := FirstPageVisits(ds.Pageviews)

	require.Len(t, rows, 1)
	assert.Equal(t, NameCount{Name: "/home", Count: 4}, rows[0])
}

func TestSessionsByPageCountsDistinctSessions(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := SessionsByPage([]entities.Pageview{
		pv(1, 1, "/home", base),
		pv(2, 1, "/home", base.Add(time.Minute)),
		pv(3, 2, "/home", base),
		pv(4, 2, "/cart", base.Add(time.Minute)),
	})

	assert.Equal(t, []NameCount{
		{Name: "/home", Count: 2},
		{Name: "/cart", Count: 1},
	}, rows)
}

func TestBounceRateByPage(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := BounceRateByPage(ds.Pageviews)

	// all four sessions land on /home, two of them bounce
	require.Len(t, rows, 1)
	assert.Equal(t, NameRate{Name: "/home", RatePct: 50}, rows[0])
}

func TestAvgDurationByPath(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	views := []entities.Pageview{
		pv(1, 1, "/home", base),
		pv(2, 1, "/cart", base.Add(2*time.Minute)),
		pv(3, 2, "/home", base),
		pv(4, 2, "/cart", base.Add(4*time.Minute)),
		pv(5, 3, "/home", base),
	}
	rows := AvgDurationByPath(views)

	assert.Equal(t, []PathDuration{
		{Path: "/home → /cart", Sessions: 2, AvgDurationMin: 3},
		{Path: "/home", Sessions: 1, AvgDurationMin: 0},
	}, rows)
}
