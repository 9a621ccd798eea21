package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"suratapi/internal/model"
	"suratapi/internal/service"
)

// CreateLetter registers a letter of any kind.
//
// @Summary      Create a letter
// @Tags         letters
// @Accept       json
// @Produce      json
// @Param        X-User-Email  header    string                     true  "Actor email"
// @Param        letter        body      service.CreateLetterInput  true  "Letter"
// @Success      201  {object}  model.Letter
// @Failure      400  {object}  errorPayload
// @Router       /letters [post]
func CreateLetter(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		var in service.CreateLetterInput
		if err := bind(c, &in); err != nil {
			return respond(c, err)
		}
		l, err := svc.Create(c.UserContext(), in, actor)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// ListLetters lists letters filtered by kind, unit_id, status, issue_code and year.
//
// @Summary      List letters
// @Tags         letters
// @Produce      json
// @Param        kind        query  string  false  "masuk, keluar or memo"
// @Param        unit_id     query  string  false  "Unit"
// @Param        status      query  string  false  "Outgoing status"
// @Param        issue_code  query  string  false  "Main issue code"
// @Param        year        query  int     false  "Creation year"
// @Param        limit       query  int     false  "Page size"   default(10)
// @Param        offset      query  int     false  "Page offset" default(0)
// @Success      200  {object}  service.ListResult[model.Letter]
// @Router       /letters [get]
func ListLetters(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respond(c, err)
		}
		q := service.LetterQuery{
			Kind:      model.LetterKind(c.Query("kind")),
			UnitID:    c.Query("unit_id"),
			Status:    model.LetterStatus(c.Query("status")),
			IssueCode: c.Query("issue_code"),
			Limit:     limit,
			Offset:    offset,
		}
		if y := c.Query("year"); y != "" {
			if q.Year, err = strconv.Atoi(y); err != nil {
				return respond(c, errInvalidYear)
			}
		}

		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(res)
	}
}

// GetLetter returns one letter with its chain, history and dispositions.
//
// @Summary      Get a letter
// @Tags         letters
// @Produce      json
// @Param        id   path      string  true  "Letter ID"
// @Success      200  {object}  model.Letter
// @Failure      404  {object}  errorPayload
// @Router       /letters/{id} [get]
func GetLetter(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		l, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(l)
	}
}

// DeleteLetter removes a draft letter or an undispositioned incoming letter.
//
// @Summary      Delete a letter
// @Tags         letters
// @Param        id   path  string  true  "Letter ID"
// @Success      204
// @Failure      409  {object}  errorPayload
// @Router       /letters/{id} [delete]
func DeleteLetter(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		if err := svc.Delete(c.UserContext(), id, actor); err != nil {
			return respond(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadAttachment attaches a file (multipart/form-data, field name: file).
//
// @Summary      Upload an attachment
// @Tags         letters
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Letter ID"
// @Param        file  formData  file    true  "Attachment"
// @Success      201  {object}  model.Attachment
// @Router       /letters/{id}/attachments [post]
func UploadAttachment(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		att, err := svc.AddAttachment(c.UserContext(), id, service.AttachmentUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		}, actor)
		if err != nil {
			return respond(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(att)
	}
}

// AttachmentURL returns a presigned download URL.
//
// @Summary      Attachment download URL
// @Tags         letters
// @Produce      json
// @Param        id            path  string  true  "Letter ID"
// @Param        attachmentId  path  string  true  "Attachment ID"
// @Success      200  {object}  map[string]string
// @Router       /letters/{id}/attachments/{attachmentId}/url [get]
func AttachmentURL(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		url, err := svc.AttachmentURL(c.UserContext(), id, c.Params("attachmentId"))
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// AuditTrail lists the audit entries of a letter, oldest first.
//
// @Summary      Letter audit trail
// @Tags         letters
// @Produce      json
// @Param        id   path  string  true  "Letter ID"
// @Success      200  {object}  map[string][]model.AuditEntry
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Router       /letters/{id}/audit [get]
func AuditTrail(svc service.LetterService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		entries, err := svc.AuditTrail(c.UserContext(), id)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(fiber.Map{"data": entries})
	}
}
