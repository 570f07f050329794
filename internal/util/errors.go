package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserDisabled        = errors.New("account disabled")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrLevelNotFound       = errors.New("level not found")
	ErrJourneyNotFound     = errors.New("Journey not found")
	ErrJourneysUnavailable = errors.New("No journeys available")
	ErrBadgeNotFound       = errors.New("badge not found")
	ErrSessionNotFound     = errors.New("game session not found")
	ErrTaskNotPassed       = errors.New("current task not passed")
	ErrLevelNotFinished    = errors.New("not all tasks passed")
	ErrInvalidFileType     = errors.New("invalid file type")
	ErrStorageUnauthorized = errors.New("storage unauthorized")
	ErrObjectNotFound      = errors.New("object not found")
	ErrFeedbackNotFound    = errors.New("feedback not found")
	ErrNotReady            = errors.New("service not ready")
	ErrInvalidRole         = errors.New("invalid role")
	ErrEmptyFeedback       = errors.New("feedback requires a rating or a message")
	ErrLevelHasNoTasks     = errors.New("level has no tasks")
	ErrLevelNotInJourney   = errors.New("level is not part of this journey")
	ErrLevelNotCompleted   = errors.New("level has not been completed")
)
