package numbering

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/repository"
	repoMocks "suratapi/internal/repository/mocks"
)

func strPtr(s string) *string { return &s }

func TestResolver_Request(t *testing.T) {
	ctx := context.Background()
	units := new(repoMocks.MockUnitRepository)
	classes := new(repoMocks.MockClassificationRepository)

	units.On("FindByID", ctx, "branch").Return(&model.Unit{ID: "branch", Code: "KPP", ParentID: strPtr("region")}, nil)
	units.On("FindByID", ctx, "region").Return(&model.Unit{ID: "region", Code: "WIM.27"}, nil)
	classes.On("FindByID", ctx, "PR.01.01").Return(&model.Classification{Code: "PR.01.01", MainIssueCode: "PR"}, nil)

	wib := time.FixedZone("WIB", 7*3600)
	r := NewResolver(units, classes, "[KODE_UNIT_KERJA_LENGKAP]-[KODE_KLASIFIKASI_ARSIP]-[NOMOR_URUT_PER_MASALAH]-[TAHUN_SAAT_INI]", wib)

	l := &model.Letter{UnitID: "branch", Classification: model.ClassificationRef{Code: "PR.01.01", MainIssueCode: "PR"}}
	at := time.Date(2025, 12, 31, 18, 30, 0, 0, time.UTC) // already 2026 in WIB

	req, err := r.Request(ctx, l, at)
	require.NoError(t, err)
	assert.Equal(t, repository.SequenceKey{Scope: repository.ScopeDocument, UnitID: "branch", IssueCode: "PR", Year: 2026}, req.Key)

	out, err := req.Render(4)
	require.NoError(t, err)
	assert.Equal(t, "KPP.WIM.27-PR.01.01-4-2026", out)

	units.AssertExpectations(t)
	classes.AssertExpectations(t)
}

func TestResolver_UnitTemplateOverride(t *testing.T) {
	ctx := context.Background()
	units := new(repoMocks.MockUnitRepository)
	classes := new(repoMocks.MockClassificationRepository)
	units.On("FindByID", ctx, "u1").Return(&model.Unit{ID: "u1", Code: "SET", NumberTemplate: "[NOMOR_URUT_PER_MASALAH]/[KODE_UNIT_KERJA_LENGKAP]/[KODE_KLASIFIKASI_ARSIP]/[TAHUN_SAAT_INI]"}, nil)
	classes.On("FindByID", ctx, "UM.01").Return(&model.Classification{Code: "UM.01", MainIssueCode: "UM"}, nil)

	r := NewResolver(units, classes, "", nil)
	got, err := r.Preview(ctx, "u1", "UM.01", 9, 2026, "")

	require.NoError(t, err)
	assert.Equal(t, "9/SET/UM.01/2026", got)
}

func TestResolver_Unresolvable(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown unit", func(t *testing.T) {
		units := new(repoMocks.MockUnitRepository)
		units.On("FindByID", ctx, "ghost").Return(nil, sql.ErrNoRows)
		r := NewResolver(units, new(repoMocks.MockClassificationRepository), "", nil)

		_, err := r.Request(ctx, &model.Letter{UnitID: "ghost"}, time.Now())

		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unknown parent", func(t *testing.T) {
		units := new(repoMocks.MockUnitRepository)
		units.On("FindByID", ctx, "b").Return(&model.Unit{ID: "b", Code: "B", ParentID: strPtr("gone")}, nil)
		units.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)
		r := NewResolver(units, new(repoMocks.MockClassificationRepository), "", nil)

		_, _, err := r.Unit(ctx, "b")

		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unknown classification with suggestion", func(t *testing.T) {
		classes := new(repoMocks.MockClassificationRepository)
		classes.On("FindByID", ctx, "PR.01.10").Return(nil, sql.ErrNoRows)
		classes.On("Codes", ctx).Return([]string{"HK.01", "PR.01.01", "UM.02"}, nil)
		r := NewResolver(new(repoMocks.MockUnitRepository), classes, "", nil)

		_, err := r.Classification(ctx, "PR.01.10")

		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Contains(t, err.Error(), `did you mean "PR.01.01"`)
	})

	t.Run("repository failure is not a validation error", func(t *testing.T) {
		classes := new(repoMocks.MockClassificationRepository)
		classes.On("FindByID", ctx, "PR").Return(nil, errors.New("db down"))
		r := NewResolver(new(repoMocks.MockUnitRepository), classes, "", nil)

		_, err := r.Classification(ctx, "PR")

		require.Error(t, err)
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "KU.01", Suggest("ku.01", []string{"KU.01", "KP.09"}))
	assert.Equal(t, "", Suggest("ZZZZZZ", []string{"KU.01"}))
}
