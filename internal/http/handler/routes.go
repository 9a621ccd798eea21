package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/model"
	"suratapi/internal/service"
)

// Services are the use cases the HTTP surface exposes.
type Services struct {
	Letters         service.LetterService
	Approvals       service.ApprovalService
	Dispositions    service.DispositionService
	Notifications   service.NotificationService
	Numbers         service.NumberService
	Units           service.Catalog[model.Unit]
	Classifications service.Catalog[model.Classification]
	Users           service.Catalog[model.User]

	// Checks are probed by /health.
	Checks []Check
	// Auth resolves the actor on every API route; nil leaves routes open.
	Auth fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.Checks...))
	app.Get("/healthz", LivenessProbe())

	group := func(prefix string) fiber.Router {
		if s.Auth == nil {
			return app.Group(prefix)
		}
		return app.Group(prefix, s.Auth)
	}

	letters := group("/letters")
	letters.Post("/", CreateLetter(s.Letters))
	letters.Get("/", ListLetters(s.Letters))
	letters.Get("/:id", GetLetter(s.Letters))
	letters.Delete("/:id", DeleteLetter(s.Letters))
	letters.Post("/:id/attachments", UploadAttachment(s.Letters))
	letters.Get("/:id/attachments/:attachmentId/url", AttachmentURL(s.Letters))
	letters.Get("/:id/audit", AuditTrail(s.Letters))

	letters.Put("/:id/approval-chain", ConfigureChain(s.Approvals))
	letters.Post("/:id/submit", SubmitLetter(s.Approvals))
	letters.Post("/:id/steps/:stepId/decision", DecideStep(s.Approvals))
	letters.Post("/:id/sign", SignLetter(s.Approvals))
	letters.Post("/:id/resubmit", ResubmitLetter(s.Approvals))

	letters.Post("/:id/dispositions", AddDisposition(s.Dispositions))
	letters.Patch("/:id/dispositions/:dispositionId", UpdateDisposition(s.Dispositions))

	notifications := group("/notifications")
	notifications.Get("/", ListNotifications(s.Notifications))
	notifications.Post("/:id/read", MarkNotificationRead(s.Notifications))

	group("/numbers").Post("/preview", PreviewNumber(s.Numbers))

	registerCatalog(group("/units"), s.Units)
	registerCatalog(group("/classifications"), s.Classifications)
	registerCatalog(group("/users"), s.Users)
}
