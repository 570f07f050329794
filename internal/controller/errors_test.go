package controller

import (
	"code4u_backend/internal/service"
	"code4u_backend/internal/util"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	respondError(ctx, err)
	return w
}

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.PrerequisiteError{Titles: []string{"Fundamentals"}}, http.StatusConflict},
		{fmt.Errorf("load: %w", util.ErrJourneyNotFound), http.StatusNotFound},
		{util.ErrLevelNotFound, http.StatusNotFound},
		{util.ErrSessionNotFound, http.StatusConflict},
		{util.ErrJourneysUnavailable, http.StatusServiceUnavailable},
		{util.ErrTaskNotPassed, http.StatusBadRequest},
		{fmt.Errorf("%w: root", util.ErrInvalidRole), http.StatusBadRequest},
		{util.ErrEmailRegistered, http.StatusConflict},
		{util.ErrLevelHasNoTasks, http.StatusBadRequest},
		{util.ErrLevelNotInJourney, http.StatusBadRequest},
		{util.ErrLevelNotCompleted, http.StatusConflict},
		{util.ErrInvalidCredentials, http.StatusUnauthorized},
		{util.ErrUserDisabled, http.StatusForbidden},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, respond(tc.err).Code, tc.err.Error())
	}
}

func TestRespondErrorPrerequisiteMessage(t *testing.T) {
	w := respond(&service.PrerequisiteError{Titles: []string{"HTML", "CSS"}})
	assert.Contains(t, w.Body.String(), "You need to complete these journeys first: HTML, CSS")

	w = respond(errors.New("secret db detail"))
	assert.NotContains(t, w.Body.String(), "secret db detail")
}
