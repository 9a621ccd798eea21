package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/service"
)

// The catalog handlers serve /units, /classifications and /users through one
// generic set, keyed by the :id path parameter.

// ListItems lists a page of catalog items.
func ListItems[T any](svc service.Catalog[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respond(c, err)
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

// GetItem returns one catalog item by id.
func GetItem[T any](svc service.Catalog[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(item)
	}
}

// CreateItem creates a catalog item.
func CreateItem[T any](svc service.Catalog[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item := new(T)
		if err := bind(c, item); err != nil {
			return respond(c, err)
		}
		out, err := svc.Create(c.UserContext(), item)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// UpdateItem replaces the catalog item stored under id.
func UpdateItem[T any](svc service.Catalog[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		item := new(T)
		if err := bind(c, item); err != nil {
			return respond(c, err)
		}
		out, err := svc.Update(c.UserContext(), c.Params("id"), item)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(out)
	}
}

// DeleteItem removes a catalog item.
func DeleteItem[T any](svc service.Catalog[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func registerCatalog[T any](r fiber.Router, svc service.Catalog[T]) {
	r.Get("/", ListItems(svc))
	r.Post("/", CreateItem(svc))
	r.Get("/:id", GetItem(svc))
	r.Put("/:id", UpdateItem(svc))
	r.Delete("/:id", DeleteItem(svc))
}
