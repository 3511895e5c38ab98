package router

import (
	"github.com/labstack/echo/v4"

	"github.com/arisehq/arise-api/internal/handler"
	"github.com/arisehq/arise-api/internal/middleware"
)

// RegisterCoach registers the coach dashboard.  The coach gate admits
// admins too, so an admin can review participants without switching roles.
func RegisterCoach(e *echo.Echo, resolve echo.MiddlewareFunc, coach *handler.CoachHandler) {
	g := e.Group("/v1/coach", resolve, middleware.RequireCoach())
	g.GET("/participants", coach.Participants)
	g.GET("/stats", coach.Stats)
}

// RegisterAdmin registers user and catalog management behind the admin
// gate.
func RegisterAdmin(e *echo.Echo, resolve echo.MiddlewareFunc, admin *handler.AdminHandler, catalog *handler.AdminAssessmentHandler) {
	g := e.Group("/v1/admin", resolve, middleware.RequireAdmin())
	g.GET("/users", admin.ListUsers)
	g.POST("/users", admin.CreateUser)
	g.PUT("/users", admin.UserAction)

	g.GET("/assessments", catalog.List)
	g.POST("/assessments", catalog.Create)
	g.PUT("/assessments/:id", catalog.Update)
	g.GET("/assessments/:id/questions", catalog.Questions)
	g.POST("/assessments/:id/questions", catalog.CreateQuestion)
	g.PUT("/assessments/:id/questions/:qid", catalog.UpdateQuestion)
	g.DELETE("/assessments/:id/questions/:qid", catalog.DeleteQuestion)
}
