package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"suratapi/internal/http/middleware"
)

// requestError is a malformed request, answered with 400 and its own code.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

var (
	errInvalidID     = &requestError{code: "INVALID_ID", message: "invalid id format"}
	errInvalidBody   = &requestError{code: "INVALID_BODY", message: "invalid request body"}
	errInvalidLimit  = &requestError{code: "INVALID_LIMIT", message: "invalid limit"}
	errInvalidOffset = &requestError{code: "INVALID_OFFSET", message: "invalid offset"}
	errInvalidYear   = &requestError{code: "INVALID_YEAR", message: "invalid year"}
)

func pagination(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = strconv.Atoi(c.Query("limit", "10")); err != nil {
		return 0, 0, errInvalidLimit
	}
	if offset, err = strconv.Atoi(c.Query("offset", "0")); err != nil {
		return 0, 0, errInvalidOffset
	}
	return limit, offset, nil
}

// letterID returns the :id path parameter, which must be a uuid.
func letterID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errInvalidID
	}
	return id, nil
}

func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return errInvalidBody
	}
	return nil
}

// actorID is the id of the user resolved by middleware.Actor.
func actorID(c *fiber.Ctx) (string, error) {
	u := middleware.ActorFrom(c)
	if u == nil {
		return "", fiber.ErrUnauthorized
	}
	return u.ID, nil
}
