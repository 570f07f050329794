package repository

import (
	"code4u_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LegalRepository struct {
	DB *gorm.DB
}

func NewLegalRepository(db *gorm.DB) *LegalRepository {
	return &LegalRepository{DB: db}
}

func (r *LegalRepository) FindByID(ctx context.Context, id string) (*model.LegalDocument, error) {
	var doc model.LegalDocument
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *LegalRepository) Save(ctx context.Context, doc *model.LegalDocument) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(doc).Error
}
