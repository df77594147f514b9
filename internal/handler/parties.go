package handler

import (
	"net/http"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/service"

	"github.com/gin-gonic/gin"
)

type PartiesHandler struct{ svc service.PartyService }

func NewPartiesHandler(svc service.PartyService) *PartiesHandler {
	return &PartiesHandler{svc: svc}
}

func (h *PartiesHandler) List(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PartiesHandler) Add(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddPartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Add(c.Request.Context(), id, actorID(c), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PartiesHandler) Update(c *gin.Context) {
	contractID, ok := parseID(c, "id")
	if !ok {
		return
	}
	partyID, ok := parseID(c, "party_id")
	if !ok {
		return
	}
	var req dto.UpdatePartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), contractID, partyID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PartiesHandler) Remove(c *gin.Context) {
	contractID, ok := parseID(c, "id")
	if !ok {
		return
	}
	partyID, ok := parseID(c, "party_id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), contractID, partyID, actorID(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
