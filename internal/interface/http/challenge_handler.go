package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/pkg/response"
	"github.com/oksasatya/nutriquest/pkg/validation"
)

type ChallengeHandler struct {
	Store  *application.ProfileStore
	Svc    *application.ChallengeService
	Logger *logrus.Logger
}

func NewChallengeHandler(store *application.ProfileStore, svc *application.ChallengeService, logger *logrus.Logger) *ChallengeHandler {
	return &ChallengeHandler{Store: store, Svc: svc, Logger: logger}
}

type completeRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required,cid"`
	CoinReward  int    `json:"coin_reward" binding:"reward"`
}

func (h *ChallengeHandler) Board(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.Board(), "challenges", nil)
}

func (h *ChallengeHandler) Completed(c *gin.Context) {
	ids := h.Store.GetCompletedChallenges()
	response.Success(c, http.StatusOK, gin.H{"ids": ids, "items": h.Svc.CompletedViews()}, "completed challenges", gin.H{"count": len(ids)})
}

func (h *ChallengeHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	items := h.Svc.Search(c.Request.Context(), q, size)
	response.Success(c, http.StatusOK, items, "search results", gin.H{"q": q, "count": len(items)})
}

// CompleteCatalog claims the catalog reward for :id. Used for challenges and meal logging.
func (h *ChallengeHandler) CompleteCatalog(c *gin.Context) {
	ch, res, err := h.Svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err, "failed to complete challenge")
		return
	}
	msg := "challenge completed"
	if res.AlreadyCompleted {
		msg = "challenge already completed"
	}
	response.Success(c, http.StatusOK, res, msg, gin.H{"challenge": ch})
}

// Complete is the raw store operation with a caller-supplied reward.
func (h *ChallengeHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Store.CompleteChallenge(c.Request.Context(), req.ChallengeID, req.CoinReward)
	if err != nil {
		writeAppError(c, err, "failed to complete challenge")
		return
	}
	msg := "challenge completed"
	if res.AlreadyCompleted {
		msg = "challenge already completed"
	}
	response.Success(c, http.StatusOK, res, msg, nil)
}

func (h *ChallengeHandler) Meals(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.Meals(), "meals", nil)
}

// LogMeal is CompleteCatalog restricted to meal entries.
func (h *ChallengeHandler) LogMeal(c *gin.Context) {
	if m, ok := h.Svc.Catalog.Get(c.Param("id")); !ok || m.Kind != entity.KindMeal {
		response.Error[any](c, http.StatusNotFound, "meal not found", nil)
		return
	}
	h.CompleteCatalog(c)
}
