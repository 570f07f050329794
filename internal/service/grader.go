package service

import (
	"code4u_backend/internal/model"
	"context"
	"strings"
)

type GradeResult struct {
	Passed bool   `json:"passed"`
	Output string `json:"output"`
}

// Grader 判定提交的代码是否通过当前任务
type Grader interface {
	Grade(ctx context.Context, task model.Task, code string) GradeResult
}

// SubstringGrader 代码包含任务的 solution 片段即通过
type SubstringGrader struct{}

func (SubstringGrader) Grade(_ context.Context, task model.Task, code string) GradeResult {
	if strings.Contains(code, task.Solution) {
		return GradeResult{Passed: true, Output: task.ExpectedOutput}
	}
	return GradeResult{Passed: false, Output: "Error: " + task.ErrorHint}
}
