package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/service"
)

// ListNotifications lists the caller's notifications, newest first.
//
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        unread  query  bool  false  "Only unread"
// @Param        limit   query  int   false  "Page size"   default(10)
// @Param        offset  query  int   false  "Page offset" default(0)
// @Success      200  {object}  service.ListResult[model.Notification]
// @Router       /notifications [get]
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		limit, offset, err := pagination(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), actor, c.QueryBool("unread"), limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

// MarkNotificationRead flags one of the caller's notifications as read.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Param        id  path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  errorPayload
// @Router       /notifications/{id}/read [post]
func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		if err := svc.MarkRead(c.UserContext(), actor, c.Params("id")); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
