// handlers/progression_routes.go
package handlers

import (
	"maze-quiz-system/middleware"
	"maze-quiz-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(
	app *fiber.App,
	recorder *services.ResultRecorder,
	progression *services.ProgressionService,
	profiles *services.ProfileService,
) {
	// 🔐 Secured routes: require X-User-ID from the gateway
	secured := app.Group("/s", middleware.UserContextMiddleware(), middleware.PlayContextMiddleware())

	secured.Post("/results", func(c *fiber.Ctx) error {
		var req services.SubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		if req.Level == nil {
			active := middleware.PlayContext(c).Level
			req.Level = &active
		}

		res, err := recorder.Submit(c.UserContext(), middleware.UserID(c), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Score submitted and recorded",
			"score":   res.Score,
			"level":   res.Level,
			"awarded": res.Awarded,
		})
	})

	secured.Post("/levels/next", func(c *fiber.Ctx) error {
		var req struct {
			CurrentLevel *int `json:"current_level"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badBody(c, err)
			}
		}
		current := middleware.PlayContext(c).Level
		if req.CurrentLevel != nil {
			current = *req.CurrentLevel
		}

		next, err := progression.Advance(c.UserContext(), middleware.UserID(c), current)
		if err != nil {
			return respondError(c, err)
		}
		pc := services.NewPlayContext(next)
		middleware.SetPlayContext(c, pc)
		return c.JSON(fiber.Map{
			"level":        next,
			"active_level": pc.Level,
			"message":      "Level up!",
		})
	})

	secured.Get("/levels/unlocked", func(c *fiber.Ctx) error {
		unlocked, err := progression.Unlocked(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(unlocked)
	})

	secured.Post("/levels/:level/enter", func(c *fiber.Ctx) error {
		level, err := c.ParamsInt("level")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "level must be a number"})
		}
		pc, err := progression.EnterLevel(c.UserContext(), middleware.UserID(c), level)
		if err != nil {
			return respondError(c, err)
		}
		cfg, _ := progression.Levels.Lookup(pc.Level)
		middleware.SetPlayContext(c, pc)
		return c.JSON(fiber.Map{
			"active_level": pc.Level,
			"entered_at":   pc.EnteredAt,
			"config":       cfg,
		})
	})

	secured.Get("/levels/:level/best", func(c *fiber.Ctx) error {
		level, err := c.ParamsInt("level")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "level must be a number"})
		}
		best, err := profiles.BestScore(c.UserContext(), middleware.UserID(c), level)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"level":      best.Level,
			"best_score": best.Score,
			"updated_at": best.UpdatedAt,
		})
	})

	secured.Post("/levels/reset", func(c *fiber.Ctx) error {
		pc := services.StartingPlayContext()
		middleware.SetPlayContext(c, pc)
		return c.JSON(pc)
	})

	secured.Get("/profile", func(c *fiber.Ctx) error {
		profile, err := profiles.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(profile)
	})
}
