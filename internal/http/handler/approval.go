package handler

import (
	"github.com/gofiber/fiber/v2"

	"suratapi/internal/model"
	"suratapi/internal/service"
)

type chainRequest struct {
	Approvers []string `json:"approvers"`
}

type decisionRequest struct {
	Decision model.Decision `json:"decision"`
	Notes    string         `json:"notes"`
}

type signRequest struct {
	SignatureRef string `json:"signature_ref"`
}

// letterAction wraps the shape shared by every approval endpoint: parse the
// letter id and actor, run fn, answer with the updated letter.
func letterAction(fn func(c *fiber.Ctx, id, actor string) (*model.Letter, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := letterID(c)
		if err != nil {
			return respond(c, err)
		}
		actor, err := actorID(c)
		if err != nil {
			return respond(c, err)
		}
		l, err := fn(c, id, actor)
		if err != nil {
			return respond(c, err)
		}
		return c.JSON(l)
	}
}

// ConfigureChain replaces the approvers of a draft letter, in order.
//
// @Summary      Configure the approval chain
// @Tags         approval
// @Accept       json
// @Produce      json
// @Param        id    path  string        true  "Letter ID"
// @Param        body  body  chainRequest  true  "Approver user IDs in order"
// @Success      200  {object}  model.Letter
// @Router       /letters/{id}/approval-chain [put]
func ConfigureChain(svc service.ApprovalService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		var req chainRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return svc.ConfigureChain(c.UserContext(), id, req.Approvers, actor)
	})
}

// SubmitLetter sends a draft to its first approver.
//
// @Summary      Submit for approval
// @Tags         approval
// @Produce      json
// @Param        id  path  string  true  "Letter ID"
// @Success      200  {object}  model.Letter
// @Failure      409  {object}  errorPayload
// @Router       /letters/{id}/submit [post]
func SubmitLetter(svc service.ApprovalService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		return svc.Submit(c.UserContext(), id, actor)
	})
}

// DecideStep approves or rejects the active step.
//
// @Summary      Decide an approval step
// @Tags         approval
// @Accept       json
// @Produce      json
// @Param        id      path  string           true  "Letter ID"
// @Param        stepId  path  string           true  "Step ID"
// @Param        body    body  decisionRequest  true  "approve or reject"
// @Success      200  {object}  model.Letter
// @Failure      403  {object}  errorPayload
// @Router       /letters/{id}/steps/{stepId}/decision [post]
func DecideStep(svc service.ApprovalService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		var req decisionRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return svc.Decide(c.UserContext(), id, c.Params("stepId"), req.Decision, req.Notes, actor)
	})
}

// SignLetter signs an approved letter and marks it sent.
//
// @Summary      Sign and send
// @Tags         approval
// @Accept       json
// @Produce      json
// @Param        id    path  string       true  "Letter ID"
// @Param        body  body  signRequest  true  "Signature reference"
// @Success      200  {object}  model.Letter
// @Router       /letters/{id}/sign [post]
func SignLetter(svc service.ApprovalService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		var req signRequest
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return svc.Sign(c.UserContext(), id, req.SignatureRef, actor)
	})
}

// ResubmitLetter edits a letter under revision and restarts its chain.
//
// @Summary      Resubmit after revision
// @Tags         approval
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Letter ID"
// @Param        body  body  service.ResubmitInput  true  "Changed fields"
// @Success      200  {object}  model.Letter
// @Router       /letters/{id}/resubmit [post]
func ResubmitLetter(svc service.ApprovalService) fiber.Handler {
	return letterAction(func(c *fiber.Ctx, id, actor string) (*model.Letter, error) {
		var in service.ResubmitInput
		if err := bind(c, &in); err != nil {
			return nil, err
		}
		return svc.Resubmit(c.UserContext(), id, in, actor)
	})
}
