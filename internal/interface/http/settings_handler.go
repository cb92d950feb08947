package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/pkg/response"
	"github.com/oksasatya/nutriquest/pkg/validation"
)

type SettingsHandler struct {
	Svc    *application.SettingsService
	Logger *logrus.Logger
}

func NewSettingsHandler(svc *application.SettingsService, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{Svc: svc, Logger: logger}
}

func (h *SettingsHandler) GetNotifications(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.NotificationSettings(c.Request.Context()), "notification settings", nil)
}

func (h *SettingsHandler) UpdateNotifications(c *gin.Context) {
	var req entity.NotificationSettingsPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Svc.UpdateNotificationSettings(c.Request.Context(), req)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to update notification settings", nil)
		return
	}
	response.Success(c, http.StatusOK, s, "notification settings updated", nil)
}
