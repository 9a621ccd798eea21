package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/service"
)

// PreviewNumber renders a document number without drawing a sequence.
//
// @Summary      Preview a document number
// @Tags         numbers
// @Accept       json
// @Produce      json
// @Param        body  body  service.PreviewInput  true  "Unit, classification and optional template"
// @Success      200  {object}  map[string]string
// @Router       /numbers/preview [post]
func PreviewNumber(svc service.NumberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PreviewInput
		if err := bind(c, &in); err != nil {
			return respond(c, err)
		}
		n, err := svc.Preview(c.UserContext(), in)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"number": n})
	}
}
