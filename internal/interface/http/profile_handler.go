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

// max avatar upload size
const maxAvatarBytes = 5 << 20

type ProfileHandler struct {
	Store   *application.ProfileStore
	Avatars *application.AvatarService
	Logger  *logrus.Logger
}

func NewProfileHandler(store *application.ProfileStore, avatars *application.AvatarService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Store: store, Avatars: avatars, Logger: logger}
}

// updateProfileRequest leaves string contents unchecked; numeric ranges are
// enforced again by the store.
type updateProfileRequest struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	Bio        *string  `json:"bio"`
	Phone      *string  `json:"phone"`
	Avatar     *string  `json:"avatar"`
	Coins      *int     `json:"coins" binding:"omitempty,reward"`
	Level      *int     `json:"level" binding:"omitempty,lvl"`
	XPProgress *float64 `json:"xpProgress" binding:"omitempty,xp"`
}

func (r updateProfileRequest) patch() entity.ProfilePatch {
	return entity.ProfilePatch{
		Name:       r.Name,
		Email:      r.Email,
		Bio:        r.Bio,
		Phone:      r.Phone,
		Avatar:     r.Avatar,
		Coins:      r.Coins,
		Level:      r.Level,
		XPProgress: r.XPProgress,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Store.GetProfile(), "profile", nil)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	patch := req.patch()
	p, err := h.Store.UpdateProfile(c.Request.Context(), patch)
	if err != nil {
		writeAppError(c, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, p, "profile updated", gin.H{"changed": patch.Changes()})
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"avatar": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Avatars.UploadAvatar(c.Request.Context(), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeAppError(c, err, "failed to upload avatar")
		return
	}
	response.Success(c, http.StatusOK, p, "avatar updated", nil)
}

func (h *ProfileHandler) Reset(c *gin.Context) {
	p := h.Store.Reset(c.Request.Context())
	response.Success(c, http.StatusOK, p, "profile reset", nil)
}
