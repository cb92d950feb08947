package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/pkg/response"
)

type SessionHandler struct {
	Svc    *application.SessionService
	Logger *logrus.Logger
}

func NewSessionHandler(svc *application.SessionService, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{Svc: svc, Logger: logger}
}

func (h *SessionHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"authenticated": h.Svc.IsAuthenticated(c.Request.Context())}, "session", nil)
}

func (h *SessionHandler) Login(c *gin.Context) {
	h.set(c, true, "logged in")
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.set(c, false, "logged out")
}

func (h *SessionHandler) set(c *gin.Context, v bool, msg string) {
	if err := h.Svc.SetAuthenticated(c.Request.Context(), v); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to update session", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"authenticated": v}, msg, nil)
}
