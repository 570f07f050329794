package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
)

type JourneyOverview struct {
	Journeys   []model.Journey                  `json:"journeys"`
	Error      string                           `json:"error,omitempty"`
	Progress   map[string]model.JourneyProgress `json:"progress"`
	Available  []model.Journey                  `json:"available"`
	Completed  []model.Journey                  `json:"completed"`
	InProgress []InProgressJourney              `json:"inProgress"`
}

// InProgressJourney 已开始未完成的旅程及其完成度
type InProgressJourney struct {
	model.Journey
	Progress             model.JourneyProgress `json:"progress"`
	CompletedCount       int                   `json:"completedCount"`
	CompletionPercentage int                   `json:"completionPercentage"`
}

// AvailableJourneys 没有前置要求或前置旅程均已完成；未登录用户只能看到没有前置要求的旅程
func AvailableJourneys(journeys []model.Journey, progress map[string]model.JourneyProgress, authenticated bool) []model.Journey {
	result := []model.Journey{}
	for _, j := range journeys {
		if len(j.Prerequisites) == 0 {
			result = append(result, j)
			continue
		}
		if !authenticated {
			continue
		}
		unlocked := true
		for _, pre := range j.Prerequisites {
			if !progress[pre].Completed {
				unlocked = false
				break
			}
		}
		if unlocked {
			result = append(result, j)
		}
	}
	return result
}

func CompletedJourneys(journeys []model.Journey, progress map[string]model.JourneyProgress) []model.Journey {
	result := []model.Journey{}
	for _, j := range journeys {
		if p, ok := progress[j.ID]; ok && p.Completed {
			result = append(result, j)
		}
	}
	return result
}

// InProgressJourneys 完成数只统计属于该旅程的关卡
func InProgressJourneys(journeys []model.Journey, progress map[string]model.JourneyProgress) []InProgressJourney {
	result := []InProgressJourney{}
	for _, j := range journeys {
		p, ok := progress[j.ID]
		if !ok || p.StartedAt == nil || p.Completed {
			continue
		}
		done := toSet(p.CompletedLevels)
		count := 0
		for _, id := range j.LevelIDs {
			if done[id] {
				count++
			}
		}
		result = append(result, InProgressJourney{
			Journey:              j,
			Progress:             p,
			CompletedCount:       count,
			CompletionPercentage: util.Percent(count, len(j.LevelIDs)),
		})
	}
	return result
}
