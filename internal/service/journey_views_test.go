package service

import (
	"code4u_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableJourneys(t *testing.T) {
	journeys := testJourneys()
	done := map[string]model.JourneyProgress{
		"fundamentals": {JourneyID: "fundamentals", Completed: true},
	}

	assert.Len(t, AvailableJourneys(journeys, nil, true), 1)
	assert.Len(t, AvailableJourneys(journeys, done, true), 2)

	// 未登录用户即使有进度也看不到带前置要求的旅程
	anon := AvailableJourneys(journeys, done, false)
	require.Len(t, anon, 1)
	assert.Equal(t, "fundamentals", anon[0].ID)
}

func TestInProgressJourneysCountsOnlyOwnLevels(t *testing.T) {
	started := time.Now()
	progress := map[string]model.JourneyProgress{
		"fundamentals": {JourneyID: "fundamentals", StartedAt: &started, CompletedLevels: []string{"level-2", "level-adv-1"}},
		"advanced":     {JourneyID: "advanced", Completed: true, StartedAt: &started},
	}

	got := InProgressJourneys(testJourneys(), progress)
	require.Len(t, got, 1)
	assert.Equal(t, "fundamentals", got[0].ID)
	assert.Equal(t, 1, got[0].CompletedCount)
	assert.Equal(t, 33, got[0].CompletionPercentage)

	completed := CompletedJourneys(testJourneys(), progress)
	require.Len(t, completed, 1)
	assert.Equal(t, "advanced", completed[0].ID)
}

func TestInProgressJourneysWithoutStart(t *testing.T) {
	progress := map[string]model.JourneyProgress{
		"fundamentals": {JourneyID: "fundamentals", CompletedLevels: []string{"level-1"}},
	}

	assert.Empty(t, InProgressJourneys(testJourneys(), progress))
	assert.NotNil(t, InProgressJourneys(nil, nil))
}
