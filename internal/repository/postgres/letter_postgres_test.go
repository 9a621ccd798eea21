package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suratapi/internal/model"
	"suratapi/internal/repository"
)

var letterCols = []string{
	"id", "kind", "agenda_number", "number", "subject", "body", "main_issue_code", "classification_code",
	"unit_id", "created_by", "created_at", "updated_at", "status", "version", "approval_chain", "history",
	"signature", "sender", "received_at", "dispositions", "attachments", "lock_version",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestLetterPostgres_Create(t *testing.T) {
	db, mock := newMockDB(t)
	wib := time.FixedZone("WIB", 7*3600)
	repo := NewLetterPostgres(db, wib)
	ctx := context.Background()

	created := time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC) // 2026 in WIB
	l := &model.Letter{
		ID: "L1", Kind: model.KindOutgoing, Subject: "Undangan", UnitID: "u1",
		Classification: model.ClassificationRef{MainIssueCode: "PR", Code: "PR.01.01"},
		CreatedBy: "creator", CreatedAt: created, UpdatedAt: created,
		Status: model.StatusDraft, Version: 1,
	}
	docKey := repository.SequenceKey{Scope: repository.ScopeDocument, UnitID: "u1", IssueCode: "PR", Year: 2026}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO sequence_counters").
		WithArgs(repository.ScopeAgenda, "u1", "", 0).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(12))
	mock.ExpectQuery("INSERT INTO sequence_counters").
		WithArgs(repository.ScopeDocument, "u1", "PR", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(3))
	args := append([]driver.Value{"L1", "keluar", int64(12), "PR-3"}, anyArgs(17)...)
	args = append(args, int64(1), 2026)
	mock.ExpectExec("INSERT INTO letters").WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.Create(ctx, l, &repository.NumberingRequest{
		Key:    docKey,
		Render: func(seq int64) (string, error) { return "PR-" + strconv.FormatInt(seq, 10), nil },
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), out.AgendaNumber)
	require.NotNil(t, out.Number)
	assert.Equal(t, "PR-3", *out.Number)
	assert.Equal(t, int64(1), out.LockVersion)
	assert.Nil(t, l.Number, "input letter is not mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterPostgres_CreateRenderFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLetterPostgres(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO sequence_counters").WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO sequence_counters").WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &model.Letter{ID: "L1", Kind: model.KindOutgoing, UnitID: "u1"},
		&repository.NumberingRequest{Render: func(int64) (string, error) { return "", errors.New("bad template") }})

	assert.EqualError(t, err, "bad template")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterPostgres_Update(t *testing.T) {
	ctx := context.Background()
	letter := func() *model.Letter {
		return &model.Letter{ID: "L1", Kind: model.KindOutgoing, Status: model.StatusApproved, LockVersion: 4}
	}

	t.Run("bumps lock version", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLetterPostgres(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE letters SET").
			WithArgs(append([]driver.Value{"L1", int64(4)}, anyArgs(18)...)...).
			WillReturnRows(sqlmock.NewRows([]string{"lock_version"}).AddRow(5))
		mock.ExpectCommit()

		out, err := repo.Update(ctx, letter(), nil)

		require.NoError(t, err)
		assert.Equal(t, int64(5), out.LockVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLetterPostgres(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE letters SET").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT 1 FROM letters WHERE id").WithArgs("L1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mock.ExpectRollback()

		_, err := repo.Update(ctx, letter(), nil)

		assert.ErrorIs(t, err, repository.ErrStaleVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLetterPostgres(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE letters SET").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT 1 FROM letters WHERE id").WithArgs("L1").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Update(ctx, letter(), nil)

		assert.True(t, IsNoRowsError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLetterPostgres_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLetterPostgres(db, nil)
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	chain := `[{"id":"s1","approver":"M","order":1,"status":"Disetujui","decided_at":"2026-02-01T08:00:00Z"},{"id":"s2","approver":"P","order":2,"status":"Pending"}]`
	rows := sqlmock.NewRows(letterCols).AddRow(
		"L1", "keluar", 7, "KPP/PR.01/1/2026", "Undangan", "isi", "PR", "PR.01",
		"u1", "creator", now, now, "Menunggu Persetujuan", 2, []byte(chain), []byte(`[{"version":1,"subject":"lama"}]`),
		nil, "", nil, []byte(`[]`), []byte(`[]`), 9,
	)
	mock.ExpectQuery("SELECT (.+) FROM letters WHERE id = ?").WithArgs("L1").WillReturnRows(rows)

	l, err := repo.FindByID(context.Background(), "L1")

	require.NoError(t, err)
	assert.Equal(t, model.KindOutgoing, l.Kind)
	assert.Equal(t, model.StatusPendingApproval, l.Status)
	require.Len(t, l.ApprovalChain, 2)
	assert.Equal(t, model.StepApproved, l.ApprovalChain[0].Status)
	require.NotNil(t, l.ApprovalChain[0].DecidedAt)
	assert.Nil(t, l.ApprovalChain[1].DecidedAt)
	require.Len(t, l.History, 1)
	assert.Equal(t, "lama", l.History[0].Subject)
	assert.Nil(t, l.Dispositions)
	assert.Nil(t, l.Signature)
	assert.Nil(t, l.ReceivedAt)
	assert.Equal(t, "KPP/PR.01/1/2026", *l.Number)
	assert.Equal(t, int64(9), l.LockVersion)

	mock.ExpectQuery("SELECT (.+) FROM letters WHERE id = ?").WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), "missing")
	assert.True(t, IsNoRowsError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterPostgres_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLetterPostgres(db, nil)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM letters WHERE kind = \$1 AND main_issue_code = \$2 AND year = \$3`).
		WithArgs("masuk", "UM", 2026).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	rows := sqlmock.NewRows(letterCols).AddRow(
		"L2", "masuk", 1, nil, "Permohonan", "", "UM", "UM.01",
		"u1", "clerk", now, now, "", 0, []byte(`[]`), []byte(`[]`),
		nil, "Dinas X", now, []byte(`[{"id":"d1","author":"a","target":"b","instruction":"cek","urgency":"Biasa","status":"Diproses","status_history":[{"status":"Diproses","actor":"a"}]}]`), []byte(`[]`), 3,
	)
	mock.ExpectQuery(`SELECT (.+) FROM letters WHERE kind = \$1 AND main_issue_code = \$2 AND year = \$3 ORDER BY created_at DESC, id DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("masuk", "UM", 2026, 20, 0).
		WillReturnRows(rows)

	res, err := repo.List(context.Background(),
		repository.LetterFilter{Kind: model.KindIncoming, IssueCode: "UM", Year: 2026},
		repository.PageQuery{Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Nil(t, res.Items[0].Number)
	require.NotNil(t, res.Items[0].ReceivedAt)
	require.Len(t, res.Items[0].Dispositions, 1)
	assert.Len(t, res.Items[0].Dispositions[0].StatusHistory, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLetterPostgres_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM letters WHERE id = ?").WithArgs("L1", int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, NewLetterPostgres(db, nil).Delete(ctx, "L1", 2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM letters WHERE id = ?").WithArgs("L1", int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1 FROM letters WHERE id").WithArgs("L1").
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		mock.ExpectRollback()

		err := NewLetterPostgres(db, nil).Delete(ctx, "L1", 1)

		assert.ErrorIs(t, err, repository.ErrStaleVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
