package handler

import (
	"net/http"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/apierror"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContractsHandler struct {
	svc    service.ContractService
	export service.ExportService
}

func NewContractsHandler(svc service.ContractService, export service.ExportService) *ContractsHandler {
	return &ContractsHandler{svc: svc, export: export}
}

// Create POST /v1/contracts
func (h *ContractsHandler) Create(c *gin.Context) {
	var req dto.CreateContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/contracts
func (h *ContractsHandler) List(c *gin.Context) {
	var filter dto.ContractFilter
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

// Get GET /v1/contracts/:id
func (h *ContractsHandler) Get(c *gin.Context) {
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

// Update PUT /v1/contracts/:id
func (h *ContractsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateContractRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, actorID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/contracts/:id
func (h *ContractsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NumberAvailability GET /v1/contracts/number-availability?number=&exclude_id=
func (h *ContractsHandler) NumberAvailability(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		c.JSON(http.StatusBadRequest, apierror.New("number is required"))
		return
	}
	var exclude *uuid.UUID
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid exclude_id"))
			return
		}
		exclude = &id
	}
	resp, err := h.svc.CheckNumber(c.Request.Context(), number, exclude)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export GET /v1/contracts/export?format=xlsx|csv plus the List filters.
func (h *ContractsHandler) Export(c *gin.Context) {
	var filter dto.ContractFilter
	if !bindQuery(c, &filter) {
		return
	}
	file, err := h.export.Contracts(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	sendFile(c, file)
}

// PDF GET /v1/contracts/:id/pdf
func (h *ContractsHandler) PDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, err := h.export.ContractPDF(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	sendFile(c, file)
}
