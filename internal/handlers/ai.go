package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// GenerateProjectDescription drafts a description from a project name
func (h *AIHandler) GenerateProjectDescription(c *gin.Context) {
	type DescriptionRequest struct {
		Name    string `json:"name" binding:"required"`
		Context string `json:"context"`
	}

	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	description, err := h.aiService.GenerateProjectDescription(c.Request.Context(), req.Name, req.Context)
	if err != nil {
		if errors.Is(err, services.ErrAIEmptyResponse) {
			apierrors.BadGateway(c, err.Error())
			return
		}
		respondServiceError(c, err, "Failed to generate description")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"description": description,
	})
}
