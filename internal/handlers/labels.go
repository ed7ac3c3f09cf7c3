package handlers

import (
	"net/http"

	"tracker/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateLabel(c *gin.Context) {
	var in services.CreateLabelInput
	if !h.bindJSON(c, &in) {
		return
	}
	label, err := h.svc.Labels.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *Handler) ListLabels(c *gin.Context) {
	labels, page, err := h.svc.Labels.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels, "pagination": page})
}

func (h *Handler) GetLabel(c *gin.Context) {
	label, err := h.svc.Labels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *Handler) UpdateLabel(c *gin.Context) {
	var in services.UpdateLabelInput
	if !h.bindJSON(c, &in) {
		return
	}
	label, err := h.svc.Labels.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *Handler) DeleteLabel(c *gin.Context) {
	if err := h.svc.Labels.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
