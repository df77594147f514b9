package handler

import (
	"net/http"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Dashboard GET /v1/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Expiration GET /v1/reports/expiration?days=90
func (h *ReportsHandler) Expiration(c *gin.Context) {
	resp, err := h.svc.Expiration(c.Request.Context(), queryInt(c, "days", 0))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Value GET /v1/reports/value
func (h *ReportsHandler) Value(c *gin.Context) {
	resp, err := h.svc.Value(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
