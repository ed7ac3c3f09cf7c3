package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"tracker/internal/config"
	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	cfg      config.Config
	logger   *slog.Logger
	sessions *session.Registry
	svc      *services.Services
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	sessions *session.Registry,
	svc *services.Services,
) *Handler {
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		svc:      svc,
	}
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind services.Kind) int {
	switch kind {
	case services.KindInvalidInput, services.KindInvalidColor, services.KindNoUpdateFields:
		return http.StatusBadRequest
	case services.KindInvalidCredentials, services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUserExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	e := services.AsError(err)
	if e.Internal() {
		h.logger.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"kind", e.Kind,
			"error", e.Err,
		)
	}
	c.JSON(StatusFor(e.Kind), gin.H{"error": e.Message, "code": e.Kind})
}

// bindJSON decodes the body into dst. An empty body leaves dst untouched so
// partial updates without fields reach the service.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid JSON body",
			"code":  services.KindInvalidInput,
		})
		return false
	}
	return true
}

func pageRequest(c *gin.Context) services.PageRequest {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return services.NewPageRequest(page, perPage)
}
