package handlers

import (
	"net/http"

	"tracker/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateComment adds a comment to the issue named in the path; any issue_id
// in the body is ignored.
func (h *Handler) CreateComment(c *gin.Context) {
	var in services.CreateCommentInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.IssueID = c.Param("id")

	comment, err := h.svc.Comments.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListComments(c *gin.Context) {
	comments, page, err := h.svc.Comments.List(c.Request.Context(), c.Param("id"), pageRequest(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "pagination": page})
}

func (h *Handler) GetComment(c *gin.Context) {
	comment, err := h.svc.Comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	var in services.UpdateCommentInput
	if !h.bindJSON(c, &in) {
		return
	}
	comment, err := h.svc.Comments.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.svc.Comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
