// handlers/level_routes.go
package handlers

import (
	"errors"

	"maze-quiz-system/config"
	"maze-quiz-system/middleware"
	"maze-quiz-system/services"

	"github.com/gofiber/fiber/v2"
)

type levelView struct {
	config.LevelConfig
	DifficultyLabel string `json:"difficulty_label"`
}

func viewLevel(l config.LevelConfig) levelView {
	return levelView{LevelConfig: l, DifficultyLabel: l.DifficultyLabel()}
}

func SetupLevelRoutes(app *fiber.App, levels *config.LevelCatalog, questions *services.QuestionService) {
	// 🔓 Public routes: no user context, still behind gateway auth
	public := app.Group("/levels", middleware.PlayContextMiddleware())

	public.Get("/", func(c *fiber.Ctx) error {
		all := levels.All()
		out := make([]levelView, 0, len(all))
		for _, l := range all {
			out = append(out, viewLevel(l))
		}
		return c.JSON(out)
	})

	// Config for the caller's active level.
	public.Get("/config", func(c *fiber.Ctx) error {
		cfg, err := levels.Lookup(middleware.PlayContext(c).Level)
		if err != nil {
			return respondError(c, services.ErrNotFound)
		}
		return c.JSON(viewLevel(cfg))
	})

	public.Get("/:level/config", func(c *fiber.Ctx) error {
		level, err := c.ParamsInt("level")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "level must be a number"})
		}
		cfg, err := levels.Lookup(level)
		if err != nil {
			return respondError(c, services.ErrNotFound)
		}
		return c.JSON(viewLevel(cfg))
	})

	// 🔐 Quiz routes (auth required)
	secured := app.Group("/s/questions", middleware.UserContextMiddleware(), middleware.PlayContextMiddleware())

	secured.Get("/random", func(c *fiber.Ctx) error {
		difficulty := c.Query("difficulty")
		if difficulty == "" {
			cfg, err := levels.Lookup(middleware.PlayContext(c).Level)
			if err != nil {
				cfg, _ = levels.Lookup(1)
			}
			difficulty = cfg.Difficulty
		}
		q, err := questions.Random(c.UserContext(), difficulty)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No questions available in the database"})
			}
			return respondError(c, err)
		}
		return c.JSON(q)
	})

	secured.Post("/validate", func(c *fiber.Ctx) error {
		var req struct {
			ID     uint   `json:"id"`
			Answer string `json:"answer"`
		}
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
		res, err := questions.Validate(c.UserContext(), req.ID, req.Answer)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})
}
