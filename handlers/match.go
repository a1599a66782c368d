// handlers/match_routes.go
package handlers

import (
	"match-notify-service/middleware"
	"match-notify-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// 🔐 Every match route needs user context from the Gateway.
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/matches", matchService.CreateMatch)
	secured.Get("/matches", matchService.ListMatches)
	secured.Get("/matches/:id", matchService.GetMatch)
	secured.Post("/matches/:id/scores", matchService.SubmitScore)
	secured.Patch("/matches/:id/state", matchService.UpdateMatchState)
}
