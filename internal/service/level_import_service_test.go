package service

import (
	"bytes"
	"code4u_backend/internal/model"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const levelsJSON = `[
  {"id": "level-1", "number": 1, "title": "Intro", "tasks": [{"id": "task1", "solution": "<html>"}]},
  {"id": "level-7", "number": 7, "title": "Selectors", "pointsToEarn": 300, "tasks": [{"id": "task1", "solution": "color:"}]},
  {"id": "level-7", "number": 7, "title": "Duplicate"},
  {"number": 8, "title": "No id"},
  {"id": "level-9", "number": 9, "title": "Empty"}
]`

func TestImportLevelsSkipsExisting(t *testing.T) {
	repo := newFakeLevelRepo(model.Level{ID: "level-1", Title: "Existing"})
	svc := NewLevelImportService(repo)

	result, err := svc.ImportReader(context.Background(), "levels.json", strings.NewReader(levelsJSON))
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, []string{"level 4: missing id", "level level-9: no tasks"}, result.Errors)
	assert.NotContains(t, repo.levels, "level-9")

	assert.Equal(t, "Existing", repo.levels["level-1"].Title)
	imported := repo.levels["level-7"]
	assert.Equal(t, model.CategoryCSS, imported.Category)
	assert.Equal(t, 300, imported.PointsToEarn)
	assert.True(t, imported.Published)
}

func TestImportReaderRejectsUnknownExtension(t *testing.T) {
	svc := NewLevelImportService(newFakeLevelRepo())

	_, err := svc.ImportReader(context.Background(), "levels.csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseLevelsJSONInvalid(t *testing.T) {
	_, err := ParseLevelsJSON(strings.NewReader(`{"id": "level-1"}`))
	assert.Error(t, err)
}

func buildLevelWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(levelSheetColumns))
	for i, c := range levelSheetColumns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseLevelsXLSXGroupsTasksByLevel(t *testing.T) {
	buf := buildLevelWorkbook(t, [][]interface{}{
		{"level-11", 11, "JS Basics", "", "", "easy", 250, "task1", "Declare", "", "", "let x", "Declared!", "Use let"},
		{"level-11", 11, "", "", "", "", "", "", "Log", "", "", "console.log(x)", "Logged!", ""},
		{"level-11", 11, "", "", "", "", "", "task3", "Broken", "", "", "", "", ""},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", ""},
	})

	levels, errs, err := ParseLevelsXLSX(buf)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, 11, levels[0].Number)
	assert.Equal(t, 250, levels[0].PointsToEarn)
	require.Len(t, levels[0].Tasks, 2)
	assert.Equal(t, "task1", levels[0].Tasks[0].ID)
	assert.Equal(t, "task2", levels[0].Tasks[1].ID)
	assert.Equal(t, "console.log(x)", levels[0].Tasks[1].Solution)
	assert.Equal(t, []string{"Row 4: task task3 has no solution"}, errs)
}

func TestImportXLSXRejectsLevelWithoutSolvableTasks(t *testing.T) {
	buf := buildLevelWorkbook(t, [][]interface{}{
		{"level-12", 12, "Broken", "", "", "", "", "task1", "Unsolved", "", "", "", "", ""},
	})
	repo := newFakeLevelRepo()

	result, err := NewLevelImportService(repo).ImportReader(context.Background(), "levels.xlsx", buf)
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Contains(t, result.Errors, "level level-12: no tasks")
	assert.Empty(t, repo.levels)
}

func TestParseLevelsXLSXRequiresLevelIDColumn(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", "title"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, _, err = ParseLevelsXLSX(buf)
	assert.ErrorContains(t, err, "missing level_id column")
}
