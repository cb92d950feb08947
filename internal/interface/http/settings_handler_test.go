package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/internal/infrastructure/memory"
	"github.com/oksasatya/nutriquest/pkg/validation"
)

func newSettingsFixture(t *testing.T) (*fixture, *application.SettingsService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	svc := application.NewSettingsService(memory.NewKeyValueRepository(), nil)
	h := NewSettingsHandler(svc, nil)

	r := gin.New()
	r.GET("/settings/notifications", h.GetNotifications)
	r.PATCH("/settings/notifications", h.UpdateNotifications)
	return &fixture{engine: r}, svc
}

func TestNotificationSettingsEndpoints(t *testing.T) {
	f, svc := newSettingsFixture(t)

	w, env := f.do(t, http.MethodGet, "/settings/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"push":true,"email":true,"achievements":true}`, string(env.Data))

	w, env = f.do(t, http.MethodPatch, "/settings/notifications", map[string]any{"email": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"push":true,"email":false,"achievements":true}`, string(env.Data))
	assert.False(t, svc.NotificationSettings(context.Background()).Email)
}

func TestNotificationSettingsRejectsBadPayload(t *testing.T) {
	f, svc := newSettingsFixture(t)

	w, env := f.do(t, http.MethodPatch, "/settings/notifications", map[string]any{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	assert.Contains(t, details, "email")

	assert.Equal(t, entity.DefaultNotificationSettings(), svc.NotificationSettings(context.Background()))
}
