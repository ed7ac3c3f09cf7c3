package handlers

import (
	"net/http"

	"tracker/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateMilestone(c *gin.Context) {
	var in services.CreateMilestoneInput
	if !h.bindJSON(c, &in) {
		return
	}
	milestone, err := h.svc.Milestones.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, milestone)
}

func (h *Handler) ListMilestones(c *gin.Context) {
	filter := services.MilestoneFilter{Status: c.Query("status")}
	milestones, page, err := h.svc.Milestones.List(c.Request.Context(), filter, pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones, "pagination": page})
}

func (h *Handler) GetMilestone(c *gin.Context) {
	milestone, err := h.svc.Milestones.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *Handler) UpdateMilestone(c *gin.Context) {
	var in services.UpdateMilestoneInput
	if !h.bindJSON(c, &in) {
		return
	}
	milestone, err := h.svc.Milestones.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *Handler) DeleteMilestone(c *gin.Context) {
	if err := h.svc.Milestones.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
