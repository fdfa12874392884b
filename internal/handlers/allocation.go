package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tandem-backend/internal/services"
)

type AllocationHandler struct {
	pipeline     services.PipelineService
	matchService services.MatchService
}

func NewAllocationHandler(pipeline services.PipelineService, matchService services.MatchService) *AllocationHandler {
	return &AllocationHandler{pipeline: pipeline, matchService: matchService}
}

// RunPopulation kicks off a synchronous population-wide allocation run.
func (ah *AllocationHandler) RunPopulation(c *gin.Context) {
	result, err := ah.pipeline.RunPopulation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ah *AllocationHandler) RunUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	result := ah.pipeline.RunForUser(c.Request.Context(), userID)
	if result.Err != nil {
		c.JSON(statusFor(result.Err), gin.H{
			"user_id":         result.UserID,
			"matches_created": result.MatchesCreated,
			"error":           messageFor(result.Err),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ah *AllocationHandler) ExpireSweep(c *gin.Context) {
	moved, err := ah.matchService.ExpireSweep(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": messageFor(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": moved})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
