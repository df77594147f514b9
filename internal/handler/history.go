package handler

import (
	"net/http"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct{ svc service.HistoryService }

func NewHistoryHandler(svc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// ListForContract GET /v1/contracts/:id/history?page=&limit=
func (h *HistoryHandler) ListForContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)
	resp, err := h.svc.ListForContract(c.Request.Context(), id, page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List GET /v1/history
func (h *HistoryHandler) List(c *gin.Context) {
	var filter dto.HistoryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
