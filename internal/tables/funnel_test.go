package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shoplens/internal/entities"
	"shoplens/internal/testsupport"
)

func TestFunnelStageUsersKeepsFixedOrder(t *testing.T) {
	ds := testsupport.SampleDataset()
	rows := FunnelStageUsers(ds.Sessions)

	assert.Equal(t, []NameCount{
		{Name: entities.StageLandingBounce, Count: 2},
		{Name: entities.StageDroppedAtProduct, Count: 1},
		{Name: entities.StageConvertedSession, Count: 1},
	}, rows)
}

func TestFunnelStageUsersCountsDistinctUsers(t *testing.T) {
	sessions := []entities.Session{
		{WebsiteSessionID: 1, UserID: 7, FunnelStage: entities.StageConvertedSession},
		{WebsiteSessionID: 2, UserID: 7, FunnelStage: entities.StageConvertedSession},
	}
	rows := FunnelStageUsers(sessions)

	assert.Equal(t, []NameCount{{Name: entities.StageConvertedSession, Count: 1}}, rows)
}

func TestFunnelStageUsersIgnoresUnknownStages(t *testing.T) {
	sessions := []entities.Session{
		{WebsiteSessionID: 1, UserID: 1, FunnelStage: "Browsing"},
		{WebsiteSessionID: 2, UserID: 2, FunnelStage: ""},
	}
	assert.Empty(t, FunnelStageUsers(sessions))
}
