package tables

import (
	"shoplens/internal/entities"
)

// FunnelStageUsers counts distinct users per funnel stage, in fixed funnel
// order from landing bounce down to converted. Stages with no users are
// omitted; sessions carrying an unknown stage label are ignored.
func FunnelStageUsers(sessions []entities.Session) []NameCount {
	users := map[string]map[int64]struct{}{}
	for _, s := range sessions {
		if s.FunnelStage == "" {
			continue
		}
		if users[s.FunnelStage] == nil {
			users[s.FunnelStage] = map[int64]struct{}{}
		}
		users[s.FunnelStage][s.UserID] = struct{}{}
	}
	rows := []NameCount{}
	for _, stage := range entities.FunnelStageOrder {
		ids := users[stage]
		if len(ids) == 0 {
			continue
		}
		rows = append(rows, NameCount{Name: stage, Count: len(ids)})
	}
	return rows
}
