package router

import (
	"github.com/labstack/echo/v4"

	"github.com/arisehq/arise-api/internal/handler"
	"github.com/arisehq/arise-api/internal/middleware"
)

// RegisterPublic registers unauthenticated endpoints.  The catalog changes
// rarely, so it sits behind the Redis response cache.  The feedback routes
// are reachable without a session on purpose: evaluators are outsiders and
// the invite token in the URL is their only credential.
func RegisterPublic(e *echo.Echo, a *handler.AssessmentHandler, fb *handler.FeedbackHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/assessments", a.Catalog, cache)
	e.GET("/v1/feedback/:token", fb.Show)
	e.POST("/v1/feedback/:token/submit", fb.Submit)
}

// RegisterParticipant registers the endpoints any authenticated user can
// reach: settings, own results, evaluators and subscription.
func RegisterParticipant(e *echo.Echo, resolve echo.MiddlewareFunc,
	settings *handler.SettingsHandler, assessments *handler.AssessmentHandler,
	evaluators *handler.EvaluatorHandler, subs *handler.SubscriptionHandler) {

	g := e.Group("/v1", resolve, middleware.RequireAuth())

	g.GET("/settings", settings.Get)
	g.PUT("/settings", settings.Update)

	g.POST("/assessments/:id/results", assessments.SubmitResult)
	g.GET("/results", assessments.ListResults)

	g.GET("/evaluators", evaluators.List)
	g.POST("/evaluators", evaluators.Create)
	g.POST("/evaluators/send-invites", evaluators.SendInvites)

	g.GET("/subscription", subs.Get)
	g.POST("/subscription/coaching", subs.SetCoaching)
}
