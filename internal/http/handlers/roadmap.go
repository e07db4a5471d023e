package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/upskillworks/roadmap-backend/internal/http/response"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/requestdata"
	"github.com/upskillworks/roadmap-backend/internal/services"
)

type RoadmapHandler struct {
	log            *logger.Logger
	roadmapService services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmapService services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{
		log:            log.With("handler", "RoadmapHandler"),
		roadmapService: roadmapService,
	}
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// respondEngineError maps the engine error taxonomy onto HTTP codes.
// Anything unrecognized becomes a generic 500 plus a local log line.
func (h *RoadmapHandler) respondEngineError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrQuotaExceeded):
		response.RespondError(c, http.StatusTooManyRequests, "quota_exceeded", err)
	case errors.Is(err, pkgerrors.ErrValidationBlocked):
		response.RespondError(c, http.StatusConflict, "validation_not_passed", err)
	case errors.Is(err, pkgerrors.ErrInvalidStateTransition):
		response.RespondError(c, http.StatusConflict, "invalid_state", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		response.RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrGenerationFailed):
		response.RespondError(c, http.StatusBadGateway, "generation_failed", err)
	default:
		h.log.Error(action+" failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, action+"_failed", err)
	}
}

type createRoadmapRequest struct {
	RevisionPrompt string `json:"revision_prompt"`
}

func (h *RoadmapHandler) CreateRoadmap(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectID")
	if !ok {
		return
	}
	var req createRoadmapRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.roadmapService.CreateRoadmap(c.Request.Context(), actor, projectID, req.RevisionPrompt)
	if err != nil {
		h.respondEngineError(c, "create_roadmap", err)
		return
	}
	response.RespondCreated(c, result)
}

func (h *RoadmapHandler) ListRoadmapVersions(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "projectID")
	if !ok {
		return
	}
	versions, err := h.roadmapService.ListRoadmapVersions(c.Request.Context(), actor, projectID)
	if err != nil {
		h.respondEngineError(c, "list_roadmaps", err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}

func (h *RoadmapHandler) GetRoadmapVersion(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapID")
	if !ok {
		return
	}
	version, err := h.roadmapService.GetRoadmapVersion(c.Request.Context(), actor, roadmapID)
	if err != nil {
		h.respondEngineError(c, "get_roadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"version": version})
}

func (h *RoadmapHandler) UpdateRoadmapManually(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapID")
	if !ok {
		return
	}
	var updates services.ManualUpdates
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.roadmapService.UpdateRoadmapManually(c.Request.Context(), actor, roadmapID, updates)
	if err != nil {
		h.respondEngineError(c, "update_roadmap", err)
		return
	}
	response.RespondOK(c, result)
}

func (h *RoadmapHandler) FinalizeRoadmap(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapID")
	if !ok {
		return
	}
	if err := h.roadmapService.FinalizeRoadmap(c.Request.Context(), actor, roadmapID); err != nil {
		h.respondEngineError(c, "finalize_roadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

func (h *RoadmapHandler) ExportURL(c *gin.Context) {
	actor, ok := actorID(c)
	if !ok {
		return
	}
	roadmapID, ok := pathUUID(c, "roadmapID")
	if !ok {
		return
	}
	url, err := h.roadmapService.ExportURL(c.Request.Context(), actor, roadmapID)
	if err != nil {
		h.respondEngineError(c, "export_url", err)
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}
