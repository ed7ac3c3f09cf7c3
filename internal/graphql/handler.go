package graphql

import (
	"log/slog"
	"net/http"

	"tracker/internal/middleware"
	"tracker/internal/services"
	"tracker/internal/session"

	"github.com/gin-gonic/gin"
	gql "github.com/graphql-go/graphql"
)

type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

type Handler struct {
	schema   gql.Schema
	sessions *session.Registry
	logger   *slog.Logger
}

func NewHandler(svc *services.Services, sessions *session.Registry, logger *slog.Logger) (*Handler, error) {
	schema, err := NewSchema(NewResolver(svc, sessions, logger))
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, sessions: sessions, logger: logger}, nil
}

// Mount registers POST /graphql on r.
func (h *Handler) Mount(r *gin.Engine) {
	r.POST("/graphql", h.Serve)
}

func (h *Handler) Serve(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gin.H{{
			"message":    "request body must be JSON with a query",
			"extensions": gin.H{"code": services.KindInvalidInput},
		}}})
		return
	}

	ctx := c.Request.Context()
	auth := requestAuth{token: middleware.Token(c)}
	p, ok, err := h.sessions.Validate(ctx, auth.token)
	if err != nil {
		h.logger.Error("Session lookup failed", "error", err)
	}
	if ok {
		auth.principal, auth.ok = p, true
		actor, _ := services.ActorFrom(ctx)
		actor.UserID, actor.Username = p.UserID, p.Username
		ctx = services.WithActor(ctx, actor)
	}

	result := gql.Do(gql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        withAuth(ctx, auth),
	})
	c.JSON(http.StatusOK, result)
}
