package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/model"
	"suratapi/internal/service"
)

type dispositionStatusRequest struct {
	Status model.DispositionStatus `json:"status"`
}

// AddDisposition routes an incoming letter to a user.
//
// @Summary      Add a disposition
// @Tags         dispositions
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Letter ID"
// @Param        body  body  service.DispositionInput  true  "Disposition"
// @Success      201  {object}  model.Disposition
// @Router       /letters/{id}/dispositions [post]
func AddDisposition(svc service.DispositionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		var in service.DispositionInput
		if err := bind(c, &in); err != nil {
			return respond(c, err)
		}
		d, _, err := svc.Add(c.UserContext(), id, in, actor)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

// UpdateDisposition records a status change on a disposition.
//
// @Summary      Update disposition status
// @Tags         dispositions
// @Accept       json
// @Produce      json
// @Param        id             path  string                    true  "Letter ID"
// @Param        dispositionId  path  string                    true  "Disposition ID"
// @Param        body           body  dispositionStatusRequest  true  "Diproses, Selesai or Ditolak"
// @Success      200  {object}  model.Letter
// @Router       /letters/{id}/dispositions/{dispositionId} [patch]
func UpdateDisposition(svc service.DispositionService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		var req dispositionStatusRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return svc.UpdateStatus(c.UserContext(), id, c.Params("dispositionId"), req.Status, actor)
	})
}
