// Package catalog 内置的默认课程数据：旅程、关卡、徽章与法律文档
package catalog

import (
	"code4u_backend/internal/model"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Catalog struct {
	Journeys       []model.Journey         `yaml:"journeys"`
	Levels         []model.Level           `yaml:"levels"`
	Badges         []model.Badge           `yaml:"badges"`
	FallbackTasks  map[string][]model.Task `yaml:"fallbackTasks"`
	FallbackTitles map[string][]string     `yaml:"fallbackTitles"`
	Legal          []model.LegalDocument   `yaml:"legal"`
}

var (
	once    sync.Once
	def     *Catalog
	loadErr error
)

// Default 返回内置目录，只解析一次
func Default() (*Catalog, error) {
	once.Do(func() {
		def, loadErr = Parse(defaultYAML)
	})
	return def, loadErr
}

// MustDefault 内置目录解析失败属于构建错误
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// LegalDocument 按 ID 查找默认法律文档
func (c *Catalog) LegalDocument(id string) (model.LegalDocument, bool) {
	for _, d := range c.Legal {
		if d.ID == id {
			return d, true
		}
	}
	return model.LegalDocument{}, false
}

// FallbackLevel 为 level-N 生成兜底关卡：分类由 N 决定，积分为 N*100
func (c *Catalog) FallbackLevel(n int) model.Level {
	category := model.CategoryForNumber(n)

	title := fmt.Sprintf("Level %d", n)
	if titles := c.FallbackTitles[category]; len(titles) > 0 {
		start := 1
		switch category {
		case model.CategoryCSS:
			start = 6
		case model.CategoryJavaScript:
			start = 11
		}
		idx := n - start
		if idx < 0 {
			idx = 0
		}
		if idx > len(titles)-1 {
			idx = len(titles) - 1
		}
		title = titles[idx]
	}

	difficulty := "Advanced"
	if n <= 3 {
		difficulty = "Beginner"
	} else if n <= 8 {
		difficulty = "Intermediate"
	}

	tasks := make([]model.Task, len(c.FallbackTasks[category]))
	copy(tasks, c.FallbackTasks[category])

	return model.Level{
		ID:           fmt.Sprintf("level-%d", n),
		Number:       n,
		Title:        title,
		Description:  fmt.Sprintf("Learn essential %s concepts in this interactive level.", category),
		Category:     category,
		Difficulty:   difficulty,
		PointsToEarn: n * 100,
		Tasks:        tasks,
		Published:    true,
	}
}
