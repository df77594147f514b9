package handler

import (
	"net/http"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves contract statuses and contract types.
type ReferenceHandler struct{ svc service.ReferenceService }

func NewReferenceHandler(svc service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

// ── Statuses ──────────────────────────────────────────────────────────────────

// ListStatuses GET /v1/statuses?all=true includes inactive ones.
func (h *ReferenceHandler) ListStatuses(c *gin.Context) {
	resp, err := h.svc.ListStatuses(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler) CreateStatus(c *gin.Context) {
	var req dto.CreateStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateStatus(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferenceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler) DeleteStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteStatus(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Types ─────────────────────────────────────────────────────────────────────

func (h *ReferenceHandler) ListTypes(c *gin.Context) {
	resp, err := h.svc.ListTypes(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler) CreateType(c *gin.Context) {
	var req dto.CreateTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateType(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReferenceHandler) UpdateType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateType(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReferenceHandler) DeleteType(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteType(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
