package service

import (
	"code4u_backend/internal/model"
	"code4u_backend/internal/util"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type FeedbackService struct {
	Repo FeedbackRepo
}

func NewFeedbackService(repo FeedbackRepo) *FeedbackService {
	return &FeedbackService{Repo: repo}
}

func (s *FeedbackService) Submit(ctx context.Context, feedback *model.Feedback) error {
	feedback.Message = strings.TrimSpace(feedback.Message)
	if feedback.Rating < 0 {
		feedback.Rating = 0
	}
	if feedback.Rating > 5 {
		feedback.Rating = 5
	}
	if feedback.Message == "" && feedback.Rating == 0 {
		return util.ErrEmptyFeedback
	}
	return s.Repo.Create(ctx, feedback)
}

func (s *FeedbackService) Get(ctx context.Context, id uint) (*model.Feedback, error) {
	f, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFeedbackNotFound
	}
	return f, err
}

func (s *FeedbackService) List(ctx context.Context, page, limit int) ([]model.Feedback, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(ctx, page, limit)
}
