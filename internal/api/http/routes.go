package httpapi

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/heweather-bot/internal/chat"
)

var validate = validator.New()

// RegisterRoutes wires the chat webhook handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, bot *chat.Bot) {
	v1 := app.Group("/api/v1")

	// Free chat text; only weather queries produce replies.
	v1.Post("/messages", func(c *fiber.Ctx) error {
		var req messageRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid message body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		replies, err := bot.HandleMessage(c.UserContext(), req.Content)
		return respond(c, replies, err)
	})

	// The named command: heweather <location>.
	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := commandQuery{Location: c.Query("location")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		replies, err := bot.Query(c.UserContext(), q.Location)
		return respond(c, replies, err)
	})
}

// messageRequest is an incoming chat message.
type messageRequest struct {
	Content string `json:"content" validate:"required"`
}

// commandQuery holds query parameters for the weather command.
type commandQuery struct {
	Location string `validate:"required"`
}

// respond sends the user-facing replies. Query errors were already turned
// into a reply, so they are only logged here.
func respond(c *fiber.Ctx, replies []chat.Reply, err error) error {
	if err != nil {
		log.Printf("ERROR: %s %s: %v", c.Method(), c.Path(), err)
	}
	if replies == nil {
		replies = []chat.Reply{}
	}
	return c.JSON(fiber.Map{
		"replies": replies,
	})
}
