package controller

import (
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误映射为统一响应
func respondError(ctx *gin.Context, err error) {
	var prereq *service.PrerequisiteError
	switch {
	case errors.As(err, &prereq):
		util.Error(ctx, http.StatusConflict, prereq.Error())
	case errors.Is(err, util.ErrJourneyNotFound),
		errors.Is(err, util.ErrLevelNotFound),
		errors.Is(err, util.ErrBadgeNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrFeedbackNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusConflict, "Game not started for this level")
	case errors.Is(err, util.ErrJourneysUnavailable):
		util.ServiceUnavailable(ctx, err.Error())
	case errors.Is(err, util.ErrTaskNotPassed),
		errors.Is(err, util.ErrLevelNotFinished),
		errors.Is(err, util.ErrInvalidFileType),
		errors.Is(err, util.ErrInvalidRole),
		errors.Is(err, util.ErrEmptyFeedback),
		errors.Is(err, util.ErrLevelHasNoTasks),
		errors.Is(err, util.ErrLevelNotInJourney):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered), errors.Is(err, util.ErrLevelNotCompleted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrUserDisabled), errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
