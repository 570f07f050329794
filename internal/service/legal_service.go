package service

import (
	"code4u_backend/internal/catalog"
	"code4u_backend/internal/model"
	"code4u_backend/pkg/logger"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LegalService struct {
	Repo    LegalRepo
	Catalog *catalog.Catalog
}

func NewLegalService(repo LegalRepo, cat *catalog.Catalog) *LegalService {
	return &LegalService{Repo: repo, Catalog: cat}
}

// GetDocument 读取失败或不存在时返回内置默认内容
func (s *LegalService) GetDocument(ctx context.Context, id string) (*model.LegalDocument, bool) {
	doc, err := s.Repo.FindByID(ctx, id)
	if err == nil {
		return doc, true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Log.Warn("Failed to load legal document, using default", zap.String("id", id), zap.Error(err))
	}

	def, ok := s.Catalog.LegalDocument(id)
	if !ok {
		return nil, false
	}
	def.LastUpdated = time.Now()
	return &def, true
}

func (s *LegalService) SaveDocument(ctx context.Context, doc *model.LegalDocument) error {
	doc.LastUpdated = time.Now()
	return s.Repo.Save(ctx, doc)
}
