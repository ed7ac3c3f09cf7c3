package handlers

import (
	"net/http"

	"tracker/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateIssue(c *gin.Context) {
	var in services.CreateIssueInput
	if !h.bindJSON(c, &in) {
		return
	}
	issue, err := h.svc.Issues.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (h *Handler) ListIssues(c *gin.Context) {
	filter := services.IssueFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	issues, page, err := h.svc.Issues.List(c.Request.Context(), filter, pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "pagination": page})
}

func (h *Handler) GetIssue(c *gin.Context) {
	issue, err := h.svc.Issues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) UpdateIssue(c *gin.Context) {
	var in services.UpdateIssueInput
	if !h.bindJSON(c, &in) {
		return
	}
	issue, err := h.svc.Issues.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) DeleteIssue(c *gin.Context) {
	if err := h.svc.Issues.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
