package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/yungbote/tandem-backend/internal/pkg/errors"
	"github.com/yungbote/tandem-backend/internal/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (mh *MatchHandler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	matches, err := mh.matchService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (mh *MatchHandler) Accept(c *gin.Context) {
	mh.transition(c, mh.matchService.Accept)
}

func (mh *MatchHandler) Decline(c *gin.Context) {
	mh.transition(c, mh.matchService.Decline)
}

func (mh *MatchHandler) transition(c *gin.Context, fn func(ctx context.Context, matchID uuid.UUID) error) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}
	if err := fn(c.Request.Context(), matchID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func statusFor(err error) int {
	var classified *errs.Classified
	if errors.As(err, &classified) {
		switch classified.Kind {
		case errs.KindValidation:
			return http.StatusBadRequest
		case errs.KindAuthentication:
			return http.StatusUnauthorized
		case errs.KindRateLimit:
			return http.StatusTooManyRequests
		}
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	var classified *errs.Classified
	if errors.As(err, &classified) && classified.Message != "" {
		return classified.Message
	}
	return "internal error"
}
