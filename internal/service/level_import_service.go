package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// 每批写入的关卡数
const importBatchSize = 450

type ImportResult struct {
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// LevelImportService 从 JSON 或 XLSX 导入关卡，已存在的 ID 跳过
type LevelImportService struct {
	Levels LevelRepo
}

func NewLevelImportService(levels LevelRepo) *LevelImportService {
	return &LevelImportService{Levels: levels}
}

// ImportReader 按文件扩展名选择解析方式
func (s *LevelImportService) ImportReader(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	var (
		levels []model.Level
		errs   []string
		err    error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		levels, err = ParseLevelsJSON(r)
	case ".xlsx":
		levels, errs, err = ParseLevelsXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported import file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	result, err := s.ImportLevels(ctx, levels)
	if result != nil {
		result.Errors = append(errs, result.Errors...)
	}
	return result, err
}

func (s *LevelImportService) ImportLevels(ctx context.Context, levels []model.Level) (*ImportResult, error) {
	result := &ImportResult{Total: len(levels), Errors: []string{}}

	var valid []model.Level
	seen := make(map[string]bool)
	for i, l := range levels {
		if l.ID == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("level %d: missing id", i+1))
			continue
		}
		if seen[l.ID] {
			result.Skipped++
			continue
		}
		seen[l.ID] = true
		if len(l.Tasks) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("level %s: no tasks", l.ID))
			continue
		}
		if l.Category == "" && l.Number > 0 {
			l.Category = model.CategoryForNumber(l.Number)
		}
		if l.PointsToEarn <= 0 {
			l.PointsToEarn = 100
		}
		l.Published = true
		valid = append(valid, l)
	}

	for start := 0; start < len(valid); start += importBatchSize {
		end := start + importBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		ids := make([]string, len(batch))
		for i, l := range batch {
			ids[i] = l.ID
		}
		existing, err := s.Levels.ExistingIDs(ctx, ids)
		if err != nil {
			return result, err
		}

		fresh := make([]model.Level, 0, len(batch))
		for _, l := range batch {
			if existing[l.ID] {
				result.Skipped++
				continue
			}
			fresh = append(fresh, l)
		}
		if err := s.Levels.CreateInBatches(ctx, fresh, importBatchSize); err != nil {
			return result, fmt.Errorf("import batch %d: %w", start/importBatchSize+1, err)
		}
		result.Imported += len(fresh)
	}

	logger.Log.Info("Levels imported",
		zap.Int("total", result.Total),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// ParseLevelsJSON 解析关卡数组
func ParseLevelsJSON(r io.Reader) ([]model.Level, error) {
	var levels []model.Level
	if err := json.NewDecoder(r).Decode(&levels); err != nil {
		return nil, fmt.Errorf("parse levels json: %w", err)
	}
	return levels, nil
}

// XLSX 表头，每行一个任务，相同 level_id 的行合并为一个关卡
var levelSheetColumns = []string{
	"level_id", "number", "title", "description", "category", "difficulty", "points",
	"task_id", "task_title", "task_description", "initial_code", "solution", "expected_output", "error_hint",
}

// ParseLevelsXLSX 读取第一个工作表
func ParseLevelsXLSX(r io.Reader) ([]model.Level, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["level_id"]; !ok {
		return nil, nil, fmt.Errorf("missing level_id column, expected headers: %s", strings.Join(levelSheetColumns, ", "))
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		levels []model.Level
		errs   []string
	)
	byID := make(map[string]int)
	for n, row := range rows[1:] {
		rowNum := n + 2
		id := cell(row, "level_id")
		if id == "" {
			continue
		}

		pos, ok := byID[id]
		if !ok {
			number, _ := strconv.Atoi(cell(row, "number"))
			points, _ := strconv.Atoi(cell(row, "points"))
			levels = append(levels, model.Level{
				ID:           id,
				Number:       number,
				Title:        cell(row, "title"),
				Description:  cell(row, "description"),
				Category:     cell(row, "category"),
				Difficulty:   cell(row, "difficulty"),
				PointsToEarn: points,
			})
			pos = len(levels) - 1
			byID[id] = pos
		}

		if cell(row, "solution") == "" {
			if cell(row, "task_id") != "" {
				errs = append(errs, fmt.Sprintf("Row %d: task %s has no solution", rowNum, cell(row, "task_id")))
			}
			continue
		}
		taskID := cell(row, "task_id")
		if taskID == "" {
			taskID = fmt.Sprintf("task%d", len(levels[pos].Tasks)+1)
		}
		levels[pos].Tasks = append(levels[pos].Tasks, model.Task{
			ID:             taskID,
			Title:          cell(row, "task_title"),
			Description:    cell(row, "task_description"),
			InitialCode:    cell(row, "initial_code"),
			Solution:       cell(row, "solution"),
			ExpectedOutput: cell(row, "expected_output"),
			ErrorHint:      cell(row, "error_hint"),
		})
	}
	return levels, errs, nil
}
