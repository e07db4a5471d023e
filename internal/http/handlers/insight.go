package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/upskillworks/roadmap-backend/internal/http/response"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/services"
)

type InsightHandler struct {
	log            *logger.Logger
	insightService services.InsightService
}

func NewInsightHandler(log *logger.Logger, insightService services.InsightService) *InsightHandler {
	return &InsightHandler{
		log:            log.With("handler", "InsightHandler"),
		insightService: insightService,
	}
}

type extractInsightsRequest struct {
	RecordingURIs []string `json:"recording_uris"`
	LanguageCode  string   `json:"language_code"`
}

func (h *InsightHandler) ExtractInsights(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectID")
	if !ok {
		return
	}
	var req extractInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(req.RecordingURIs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_recordings", nil)
		return
	}

	insights, err := h.insightService.ExtractFromRecordings(c.Request.Context(), actor, projectID, req.RecordingURIs, req.LanguageCode)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrQuotaExceeded):
			response.RespondError(c, http.StatusTooManyRequests, "quota_exceeded", err)
		case errors.Is(err, pkgerrors.ErrUnauthorized):
			response.RespondError(c, http.StatusForbidden, "forbidden", err)
		case errors.Is(err, pkgerrors.ErrNotFound):
			response.RespondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, pkgerrors.ErrGenerationFailed):
			response.RespondError(c, http.StatusBadGateway, "generation_failed", err)
		default:
			h.log.Error("extract_insights failed", "error", err)
			response.RespondError(c, http.StatusInternalServerError, "extract_insights_failed", err)
		}
		return
	}
	response.RespondOK(c, gin.H{"insights": insights})
}
