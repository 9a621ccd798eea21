package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"suratapi/internal/model"
	repoMocks "suratapi/internal/repository/mocks"
	"suratapi/internal/workflow"
)

func noticeEvent() Event {
	return Event{
		ID: "ev-1", Transition: "approve_final", At: testAt,
		Notice: &workflow.Notice{UserID: "creator", LetterID: "L1", Message: "Surat disetujui"},
	}
}

func auditEvent() Event {
	return Event{
		ID: "ev-2", Transition: "approve_final", At: testAt,
		Audit: &workflow.AuditRecord{LetterID: "L1", Actor: "P", Action: workflow.ActionApproved},
	}
}

func TestStoreSink(t *testing.T) {
	ctx := context.Background()
	notes := new(repoMocks.MockNotificationRepository)
	audit := new(repoMocks.MockAuditRepository)
	notes.On("Create", ctx, &model.Notification{
		ID: "ev-1", UserID: "creator", RelatedLetterID: "L1", Message: "Surat disetujui", Timestamp: testAt,
	}).Return(nil)
	audit.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEntry) bool {
		return e.ID == "ev-2" && e.Action == workflow.ActionApproved && e.Actor == "P" && e.CreatedAt.Equal(testAt)
	})).Return(errors.New("db down"))

	s := NewStoreSink(notes, audit)

	assert.NoError(t, s.Deliver(ctx, noticeEvent()))
	assert.EqualError(t, s.Deliver(ctx, auditEvent()), "db down")
	notes.AssertExpectations(t)
	audit.AssertExpectations(t)
}

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (c *fakeConn) Publish(subj string, data []byte) error {
	c.subject, c.data = subj, data
	return c.err
}

func TestNATSSink(t *testing.T) {
	conn := &fakeConn{}
	s := NewNATSSink(conn, "surat.")

	require.NoError(t, s.Deliver(context.Background(), noticeEvent()))

	assert.Equal(t, "surat.notifications.creator", conn.subject)
	var m Message
	require.NoError(t, json.Unmarshal(conn.data, &m))
	assert.Equal(t, "creator", m.UserID)
	assert.Equal(t, "L1", m.LetterID)
	assert.Equal(t, "notification", m.Kind)

	assert.Equal(t, "approve_final", m.Transition)

	assert.Equal(t, "surat.audit.L1", s.Subject(auditEvent()))
	assert.Equal(t, "ops.notifications.kepala_kantor", NewNATSSink(conn, "ops").Subject(Event{
		Notice: &workflow.Notice{UserID: "kepala.kantor", LetterID: "L1"},
	}))
	assert.Equal(t, "surat.notifications.unknown", NewNATSSink(conn, "").Subject(Event{Notice: &workflow.Notice{}}))

	conn.err = errors.New("nats: connection closed")
	assert.Error(t, s.Deliver(context.Background(), auditEvent()))
}

func TestWebhookSink(t *testing.T) {
	var hits atomic.Int32
	status := http.StatusNoContent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "ev-1", r.Header.Get("Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"user_id":"creator"`)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	s := NewWebhookSink(srv.URL, nil)
	ctx := context.Background()

	require.NoError(t, s.Deliver(ctx, noticeEvent()))
	require.NoError(t, s.Deliver(ctx, auditEvent()), "audit records are skipped")
	assert.Equal(t, int32(1), hits.Load())

	status = http.StatusBadRequest
	err := s.Deliver(ctx, noticeEvent())
	var perm *backoff.PermanentError
	assert.ErrorAs(t, err, &perm)

	status = http.StatusBadGateway
	err = s.Deliver(ctx, noticeEvent())
	require.Error(t, err)
	assert.False(t, errors.As(err, &perm))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(zerolog.New(&buf))

	require.NoError(t, s.Deliver(context.Background(), auditEvent()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, workflow.ActionApproved, entry["action"])
	assert.Equal(t, "L1", entry["letter_id"])
}
