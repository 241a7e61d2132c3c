package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvertedBounds(t *testing.T) {
	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := New(from, from.AddDate(0, 0, -1))
	assert.Error(t, err)
}

func TestContainsIsInclusive(t *testing.T) {
	r, err := New(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, r.Contains(r.From))
	assert.True(t, r.Contains(r.To))
	assert.True(t, r.Contains(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(r.From.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(r.To.Add(time.Nanosecond)))
}

func TestParseExtendsToEndOfDay(t *testing.T) {
	r, err := Parse("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.True(t, r.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseBothEmptyMeansNoRestriction(t *testing.T) {
	r, err := Parse("", "")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestParseSingleBoundIsAnError(t *testing.T) {
	_, err := Parse("2024-03-01", "")
	assert.Error(t, err)

	_, err = Parse("", "2024-03-31")
	assert.Error(t, err)
}

func TestParseRejectsBadDates(t *testing.T) {
	_, err := Parse("03/01/2024", "2024-03-31")
	assert.Error(t, err)
}

func TestMonthAndQuarterKeys(t *testing.T) {
	ts := time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-08", MonthKey(ts))
	assert.Equal(t, "2024-Q3", QuarterKey(ts))
	assert.Equal(t, "2024-Q1", QuarterKey(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-Q4", QuarterKey(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}
