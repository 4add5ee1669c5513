package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/config"
	"buildsite/internal/http/handlers"
	"buildsite/internal/logger"
	"buildsite/internal/models"
	"buildsite/internal/rbac"
)

func NewRouter(db *gorm.DB, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), logger.GinLogger(), logger.GinRecovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	login := NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst)
	r.POST("/api/v1/auth/login", login.Middleware(), handlers.LoginHandler(db, cfg.JWTSecret, cfg.TokenTTL))
	r.POST("/api/v1/auth/logout", handlers.LogoutHandler())

	api := r.Group("/api/v1", auth.JWT(db, cfg.JWTSecret))
	{
		api.GET("/me", handlers.MeHandler(db))
		api.GET("/roles", handlers.ListRoles())

		// Users
		api.GET("/users", require(rbac.CapManageUsers), handlers.ListUsers(db))
		api.POST("/users", require(rbac.CapManageUsers), handlers.CreateUser(db))
		api.GET("/users/:id", handlers.ProfileHandler(db))
		api.POST("/users/:id/deactivate", require(rbac.CapManageUsers), handlers.SetUserStatus(db, models.UserSuspended))
		api.POST("/users/:id/activate", require(rbac.CapManageUsers), handlers.SetUserStatus(db, models.UserActive))

		// Projects
		api.GET("/projects", handlers.ListProjects(db))
		api.POST("/projects", require(rbac.CapManageProjects), handlers.CreateProject(db))
		api.GET("/projects/:id", handlers.GetProject(db))
		api.DELETE("/projects/:id", require(rbac.CapManageProjects), handlers.DeleteProject(db))
		api.GET("/projects/:id/contacts", handlers.ProjectContacts(db))

		// Membership
		api.GET("/projects/:id/members", handlers.ListMembers(db))
		api.POST("/projects/:id/members", require(rbac.CapManageProjects), handlers.GrantMember(db))
		api.DELETE("/projects/:id/members/:userId", require(rbac.CapManageProjects), handlers.RevokeMember(db))

		// Payments
		api.GET("/projects/:id/payments", handlers.ListPayments(db))
		api.POST("/projects/:id/payments", handlers.CreatePayment(db))
		api.POST("/projects/:id/payments/:pid/paid", handlers.MarkPaymentPaid(db))

		// Materials and field updates
		api.GET("/projects/:id/materials", handlers.ListMaterials(db))
		api.POST("/projects/:id/materials", handlers.CreateMaterial(db))
		api.DELETE("/projects/:id/materials/:mid", handlers.DeleteMaterial(db))
		api.GET("/projects/:id/updates", handlers.ListUpdates(db))
		api.POST("/projects/:id/updates", handlers.CreateUpdate(db))

		// Drawings
		api.GET("/projects/:id/drawings", handlers.ListDrawings(db))
		api.POST("/projects/:id/drawings", handlers.CreateDrawing(db))
		api.POST("/projects/:id/drawings/:did/approve", handlers.ApproveDrawing(db))
		api.POST("/projects/:id/drawings/:did/revoke", handlers.RevokeDrawing(db))
		api.DELETE("/projects/:id/drawings/:did", handlers.DeleteDrawing(db))

		// Inspections
		api.GET("/projects/:id/inspections", handlers.ListInspections(db))
		api.POST("/projects/:id/inspections", handlers.CreateInspection(db))
		api.PUT("/projects/:id/inspections/:iid/responses", handlers.UpdateInspectionResponses(db))
		api.POST("/projects/:id/inspections/:iid/submit", handlers.SubmitInspection(db))
		api.POST("/projects/:id/inspections/:iid/review", handlers.ReviewInspection(db))

		// Queries
		api.GET("/projects/:id/queries", handlers.ListQueries(db))
		api.POST("/projects/:id/queries", handlers.CreateQuery(db))
		api.POST("/projects/:id/queries/:qid/respond", handlers.RespondQuery(db))
		api.POST("/projects/:id/queries/:qid/close", handlers.CloseQuery(db))

		// Audit Trail
		api.GET("/audit", require(rbac.CapReadAudit), handlers.ListAudit(db))
	}

	return r
}

// require gates a route on role alone. It runs before any lookup, so a
// denial says nothing about whether the target exists.
func require(capability rbac.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.CurrentPrincipal(c)
		if !ok || !rbac.Allows(p.Role, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "missing": capability})
			return
		}
		c.Next()
	}
}
