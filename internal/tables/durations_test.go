package tables

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shoplens/internal/entities"
)

func TestSessionDurationPercentilesEmpty(t *testing.T) {
	assert.Equal(t, DurationPercentiles{}, SessionDurationPercentiles(nil))
}

func TestSessionDurationPercentiles(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var views []entities.Pageview
	id := int64(0)
	// 10 sessions lasting 1..10 minutes
	for s := int64(1); s <= 10; s++ {
		id++
		views = append(views, pv(id, s, "/home", base))
		id++
		views = append(views, pv(id, s, "/cart", base.Add(time.Duration(s)*time.Minute)))
	}

	got := SessionDurationPercentiles(views)
	assert.Equal(t, 10, got.Sessions)
	assert.Equal(t, 10.0, got.MaxMin)
	assert.InDelta(t, 5, got.P50Min, 1)
	assert.InDelta(t, 9, got.P90Min, 1)
	assert.GreaterOrEqual(t, got.P99Min, got.P90Min)
	assert.GreaterOrEqual(t, got.MaxMin, got.P99Min)
}
