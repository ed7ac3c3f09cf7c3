package handlers

import (
	"net/http"

	"tracker/internal/middleware"
	"tracker/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Mount attaches another transport to the engine, e.g. the GraphQL or SOAP
// endpoint.
type Mount func(r *gin.Engine)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter, mounts ...Mount) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(h.logger))
	r.Use(middleware.CORS(h.cfg.AllowedOrigins()))

	store := cookie.NewStore([]byte(h.cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(middleware.SessionName, store))
	r.Use(middleware.ClientContext())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public Routes
	public := r.Group("/")
	if rateLimiter != nil {
		public.Use(middleware.RateLimit(rateLimiter))
	}
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(h.sessions, h.logger))
	{
		authorized.GET("/profile", h.Profile)

		authorized.GET("/issues", h.ListIssues)
		authorized.POST("/issues", h.CreateIssue)
		authorized.GET("/issues/:id", h.GetIssue)
		authorized.PUT("/issues/:id", h.UpdateIssue)
		authorized.PATCH("/issues/:id", h.UpdateIssue)
		authorized.DELETE("/issues/:id", h.DeleteIssue)
		authorized.GET("/issues/:id/comments", h.ListComments)
		authorized.POST("/issues/:id/comments", h.CreateComment)

		authorized.GET("/comments/:id", h.GetComment)
		authorized.PUT("/comments/:id", h.UpdateComment)
		authorized.PATCH("/comments/:id", h.UpdateComment)
		authorized.DELETE("/comments/:id", h.DeleteComment)

		authorized.GET("/labels", h.ListLabels)
		authorized.POST("/labels", h.CreateLabel)
		authorized.GET("/labels/:id", h.GetLabel)
		authorized.PUT("/labels/:id", h.UpdateLabel)
		authorized.PATCH("/labels/:id", h.UpdateLabel)
		authorized.DELETE("/labels/:id", h.DeleteLabel)

		authorized.GET("/milestones", h.ListMilestones)
		authorized.POST("/milestones", h.CreateMilestone)
		authorized.GET("/milestones/:id", h.GetMilestone)
		authorized.PUT("/milestones/:id", h.UpdateMilestone)
		authorized.PATCH("/milestones/:id", h.UpdateMilestone)
		authorized.DELETE("/milestones/:id", h.DeleteMilestone)
	}

	for _, m := range mounts {
		m(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": services.KindNotFound})
	})

	return r
}
