package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"suratapi/internal/apperror"
	"suratapi/internal/http/middleware"
	"suratapi/internal/model"
	"suratapi/internal/service"
	serviceMocks "suratapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// as stands in for middleware.Actor with a fixed user.
func as(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.ActorLocalKey, &model.User{ID: userID})
		return c.Next()
	}
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(Check{Name: "database", Ping: db.PingContext}))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decodeError(t, resp.Body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
		assert.Equal(t, "database unavailable", body.Error.Message)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "validation", err: apperror.Validation("subject", "is required"), wantStatus: 400, wantCode: "VALIDATION_ERROR", wantMsg: "subject: is required"},
		{name: "not found", err: apperror.NotFound("letter", "x"), wantStatus: 404, wantCode: "NOT_FOUND"},
		{name: "invalid transition", err: apperror.InvalidTransition("letter is Draft"), wantStatus: 409, wantCode: "INVALID_TRANSITION"},
		{name: "conflict hides cause", err: apperror.Conflict("letter", "x", errors.New("stale version")), wantStatus: 409, wantCode: "CONCURRENCY_CONFLICT", wantMsg: `letter "x" was modified concurrently`},
		{name: "forbidden", err: apperror.Forbidden("not your step"), wantStatus: 403, wantCode: "FORBIDDEN"},
		{name: "unauthenticated", err: fiber.ErrUnauthorized, wantStatus: 401, wantCode: "UNAUTHENTICATED"},
		{name: "request error", err: errInvalidLimit, wantStatus: 400, wantCode: "INVALID_LIMIT"},
		{name: "internal", err: errors.New("pq: connection refused"), wantStatus: 500, wantCode: "INTERNAL_ERROR", wantMsg: "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respond(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp.Body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error.Message)
			}
		})
	}
}

func TestListLetters(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Get("/letters", ListLetters(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.ListResult[model.Letter]{
			Items: []model.Letter{{ID: uuid.New().String(), Subject: "Undangan"}},
			Total: 1,
		}
		q := service.LetterQuery{Kind: model.KindOutgoing, UnitID: "u1", Year: 2026, Limit: 5, Offset: 0}
		mockSvc.On("List", mock.Anything, q).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/letters?kind=keluar&unit_id=u1&year=2026&limit=5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ListResult[model.Letter]
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/letters?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/letters?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid year", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/letters?year=2026a", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_YEAR", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, service.LetterQuery{Limit: 10}).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/letters", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateLetter(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Post("/letters", as("creator"), CreateLetter(mockSvc))

	in := service.CreateLetterInput{
		Kind:               model.KindOutgoing,
		Subject:            "Undangan rapat",
		ClassificationCode: "PR.01.01",
		UnitID:             "u-wim",
		Approvers:          []string{"M", "P"},
	}

	t.Run("success", func(t *testing.T) {
		created := &model.Letter{ID: uuid.New().String(), Kind: model.KindOutgoing, Status: model.StatusDraft}
		mockSvc.On("Create", mock.Anything, in, "creator").Return(created, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/letters", in))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.Letter
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, created.ID, result.ID)
		assert.Equal(t, model.StatusDraft, result.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything, "creator").
			Return(nil, apperror.Validation("classification_code", "unknown code")).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPost, "/letters", in))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "classification_code")
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/letters", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("no actor", func(t *testing.T) {
		anon := fiber.New()
		anon.Post("/letters", CreateLetter(mockSvc))

		resp, _ := anon.Test(jsonRequest(http.MethodPost, "/letters", in))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp.Body).Error.Code)
	})
}

func TestGetLetter(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Get("/letters/:id", GetLetter(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Letter{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/letters/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Letter
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, apperror.NotFound("letter", id)).Once()

		req := httptest.NewRequest(http.MethodGet, "/letters/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/letters/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/letters/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteLetter(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Delete("/letters/:id", as("creator"), DeleteLetter(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, "creator").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/letters/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not a draft", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, "creator").Return(apperror.InvalidTransition("letter is Terkirim")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/letters/"+id, nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, "creator").Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/letters/"+id, nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadAttachment(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Post("/letters/:id/attachments", as("creator"), UploadAttachment(mockSvc))
	id := uuid.New().String()

	multipartBody := func(content string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "lampiran.pdf")
		part.Write([]byte(content))
		writer.Close()
		return body, writer.FormDataContentType()
	}
	isUpload := mock.MatchedBy(func(up service.AttachmentUpload) bool {
		return up.Filename == "lampiran.pdf" && up.Size == 11 && up.Reader != nil
	})

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody("hello world")
		expected := &model.Attachment{ID: uuid.New().String(), Filename: "lampiran.pdf"}
		mockSvc.On("AddAttachment", mock.Anything, id, isUpload, "creator").Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/letters/"+id+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Attachment
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/letters/"+id+"/attachments", nil)
		// Missing content-type and body
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody("hello world")
		mockSvc.On("AddAttachment", mock.Anything, id, isUpload, "creator").Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/letters/"+id+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAttachmentURLAndAudit(t *testing.T) {
	mockSvc := new(serviceMocks.MockLetterService)
	app := fiber.New()
	app.Get("/letters/:id/attachments/:attachmentId/url", AttachmentURL(mockSvc))
	app.Get("/letters/:id/audit", AuditTrail(mockSvc))
	id := uuid.New().String()

	mockSvc.On("AttachmentURL", mock.Anything, id, "a1").Return("http://minio/letters/a1?sig=x", nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/letters/"+id+"/attachments/a1/url", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var url map[string]string
	json.NewDecoder(resp.Body).Decode(&url)
	assert.Equal(t, "http://minio/letters/a1?sig=x", url["url"])

	mockSvc.On("AuditTrail", mock.Anything, id).Return([]model.AuditEntry{{Action: "letter.created"}}, nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/letters/"+id+"/audit", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var audit struct {
		Data []model.AuditEntry `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&audit)
	require.Len(t, audit.Data, 1)
	assert.Equal(t, "letter.created", audit.Data[0].Action)

	ghost := uuid.New().String()
	mockSvc.On("AuditTrail", mock.Anything, ghost).Return(nil, apperror.NotFound("letter", ghost)).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/letters/"+ghost+"/audit", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)

	mockSvc.AssertExpectations(t)
}

func TestApprovalHandlers(t *testing.T) {
	id := uuid.New().String()
	sent := &model.Letter{ID: id, Status: model.StatusSent}

	tests := []struct {
		name       string
		req        *http.Request
		setup      func(m *serviceMocks.MockApprovalService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "configure chain",
			req:  jsonRequest(http.MethodPut, "/letters/"+id+"/approval-chain", chainRequest{Approvers: []string{"M", "P"}}),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("ConfigureChain", mock.Anything, id, []string{"M", "P"}, "creator").Return(&model.Letter{ID: id}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "submit from wrong state",
			req:  httptest.NewRequest(http.MethodPost, "/letters/"+id+"/submit", nil),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("Submit", mock.Anything, id, "creator").Return(nil, apperror.InvalidTransition("letter is Terkirim"))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_TRANSITION",
		},
		{
			name: "decide by someone else",
			req:  jsonRequest(http.MethodPost, "/letters/"+id+"/steps/s1/decision", decisionRequest{Decision: model.DecisionApprove}),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("Decide", mock.Anything, id, "s1", model.DecisionApprove, "", "creator").Return(nil, apperror.Forbidden("step s1 belongs to M"))
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name: "decide loses the race",
			req:  jsonRequest(http.MethodPost, "/letters/"+id+"/steps/s1/decision", decisionRequest{Decision: model.DecisionReject, Notes: "revisi"}),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("Decide", mock.Anything, id, "s1", model.DecisionReject, "revisi", "creator").Return(nil, apperror.Conflict("letter", id, nil))
			},
			wantStatus: http.StatusConflict,
			wantCode:   "CONCURRENCY_CONFLICT",
		},
		{
			name: "sign",
			req:  jsonRequest(http.MethodPost, "/letters/"+id+"/sign", signRequest{SignatureRef: "ttd-1"}),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("Sign", mock.Anything, id, "ttd-1", "creator").Return(sent, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "resubmit",
			req:  jsonRequest(http.MethodPost, "/letters/"+id+"/resubmit", map[string]any{"approvers": []string{"P"}}),
			setup: func(m *serviceMocks.MockApprovalService) {
				m.On("Resubmit", mock.Anything, id, service.ResubmitInput{Approvers: []string{"P"}}, "creator").Return(&model.Letter{ID: id}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "sign with bad body",
			req:        httptest.NewRequest(http.MethodPost, "/letters/"+id+"/sign", strings.NewReader("x")),
			setup:      func(*serviceMocks.MockApprovalService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BODY",
		},
		{
			name:       "invalid id",
			req:        httptest.NewRequest(http.MethodPost, "/letters/nope/submit", nil),
			setup:      func(*serviceMocks.MockApprovalService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(serviceMocks.MockApprovalService)
			tt.setup(m)
			app := fiber.New()
			app.Use(as("creator"))
			app.Put("/letters/:id/approval-chain", ConfigureChain(m))
			app.Post("/letters/:id/submit", SubmitLetter(m))
			app.Post("/letters/:id/steps/:stepId/decision", DecideStep(m))
			app.Post("/letters/:id/sign", SignLetter(m))
			app.Post("/letters/:id/resubmit", ResubmitLetter(m))

			resp, err := app.Test(tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Error.Code)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestDispositionHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockDispositionService)
	app := fiber.New()
	app.Use(as("head"))
	app.Post("/letters/:id/dispositions", AddDisposition(mockSvc))
	app.Patch("/letters/:id/dispositions/:dispositionId", UpdateDisposition(mockSvc))
	id := uuid.New().String()

	in := service.DispositionInput{Target: "staff", Instruction: "Tindak lanjuti", Urgency: model.UrgencyUrgent}
	d := &model.Disposition{ID: "d1", Target: "staff", Status: model.DispositionInProgress}
	mockSvc.On("Add", mock.Anything, id, in, "head").Return(d, &model.Letter{ID: id}, nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/letters/"+id+"/dispositions", in))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var got model.Disposition
	json.NewDecoder(resp.Body).Decode(&got)
	assert.Equal(t, "d1", got.ID)

	mockSvc.On("UpdateStatus", mock.Anything, id, "d1", model.DispositionDone, "head").Return(&model.Letter{ID: id}, nil).Once()
	resp, _ = app.Test(jsonRequest(http.MethodPatch, "/letters/"+id+"/dispositions/d1", dispositionStatusRequest{Status: model.DispositionDone}))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("Add", mock.Anything, id, mock.Anything, "head").Return(nil, nil, apperror.Validation("letter", "outgoing letters cannot be dispositioned")).Once()
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/letters/"+id+"/dispositions", in))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp.Body).Error.Code)

	mockSvc.AssertExpectations(t)
}

func TestNotificationHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockNotificationService)
	app := fiber.New()
	app.Use(as("M"))
	app.Get("/notifications", ListNotifications(mockSvc))
	app.Post("/notifications/:id/read", MarkNotificationRead(mockSvc))

	res := &service.ListResult[model.Notification]{Items: []model.Notification{{ID: "n1", UserID: "M"}}, Total: 1}
	mockSvc.On("List", mock.Anything, "M", true, 10, 0).Return(res, nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got service.ListResult[model.Notification]
	json.NewDecoder(resp.Body).Decode(&got)
	assert.Equal(t, 1, got.Total)

	mockSvc.On("MarkRead", mock.Anything, "M", "n1").Return(nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/notifications/n1/read", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	mockSvc.On("MarkRead", mock.Anything, "M", "n2").Return(apperror.NotFound("notification", "n2")).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/notifications/n2/read", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestPreviewNumber(t *testing.T) {
	mockSvc := new(serviceMocks.MockNumberService)
	app := fiber.New()
	app.Post("/numbers/preview", PreviewNumber(mockSvc))

	in := service.PreviewInput{UnitID: "u-wim", ClassificationCode: "PR.01.01", Sequence: 3}
	mockSvc.On("Preview", mock.Anything, in).Return("WIM.27.PR.01.01-3", nil).Once()

	resp, _ := app.Test(jsonRequest(http.MethodPost, "/numbers/preview", in))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, "WIM.27.PR.01.01-3", body["number"])
	mockSvc.AssertExpectations(t)
}

func TestCatalogHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalog[model.Classification])
	app := fiber.New()
	registerCatalog(app.Group("/classifications"), mockSvc)

	item := &model.Classification{Code: "PR.01.01", MainIssueCode: "PR"}

	mockSvc.On("List", mock.Anything, 10, 0).
		Return(&service.ListResult[model.Classification]{Items: []model.Classification{*item}, Total: 1}, nil).Once()
	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/classifications", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("Get", mock.Anything, "PR.01.01").Return(item, nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/classifications/PR.01.01", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mockSvc.On("Create", mock.Anything, &model.Classification{Code: "pr.01.01"}).Return(item, nil).Once()
	resp, _ = app.Test(jsonRequest(http.MethodPost, "/classifications", map[string]string{"code": "pr.01.01"}))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	mockSvc.On("Update", mock.Anything, "PR.01.01", mock.Anything).Return(nil, apperror.NotFound("classification", "PR.01.01")).Once()
	resp, _ = app.Test(jsonRequest(http.MethodPut, "/classifications/PR.01.01", item))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	mockSvc.On("Delete", mock.Anything, "PR.01.01").Return(nil).Once()
	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/classifications/PR.01.01", nil))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	// Register all routes
	RegisterRoutes(app, Services{})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		// Fiber returns 405 by default if route exists but method doesn't match
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("health without checks", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRouting_AuthGuardsAPIRoutes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, Services{Auth: func(c *fiber.Ctx) error { return fiber.ErrUnauthorized }})

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/letters", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, resp.Body).Error.Code)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
