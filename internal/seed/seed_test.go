package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"suratapi/internal/apperror"
	"suratapi/internal/model"
	"suratapi/internal/repository/memory"
	"suratapi/internal/service"
	serviceMocks "suratapi/internal/service/mocks"
)

const doc = `
units:
  - id: u-27
    code: "27"
    name: Kanwil DJP Jawa Timur III
  - id: u-wim
    code: WIM
    name: KPP Pratama Malang Utara
    parent_id: u-27
    number_template: "B-[NOMOR_URUT_PER_MASALAH]/[KODE_UNIT_KERJA_LENGKAP]/[KODE_KLASIFIKASI_ARSIP]/[TAHUN_SAAT_INI]"
classifications:
  - code: pr.01.01
    description: Rencana kerja
    retention_active_years: 2
    retention_inactive_years: 3
users:
  - id: kepala
    email: Kepala@Kantor.go.id
    name: Kepala Kantor
    unit_id: u-wim
    role: head
`

func catalogs() Catalogs {
	units := memory.NewUnitStore()
	return Catalogs{
		Units:           service.NewUnitCatalog(units),
		Classifications: service.NewClassificationCatalog(memory.NewClassificationStore()),
		Users:           service.NewUserCatalog(memory.NewUserStore(), units),
	}
}

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, f.Units, 2)
	assert.Equal(t, "u-27", *f.Units[1].ParentID)
	assert.Equal(t, 3, f.Classifications[0].RetentionInactiveYears)
	assert.Equal(t, "head", f.Users[0].Role)

	_, err = Decode(strings.NewReader("units:\n  - code: X\n    name: X\n"))
	assert.ErrorContains(t, err, "id is required")

	_, err = Decode(strings.NewReader("unitz: []\n"))
	assert.Error(t, err, "unknown keys are rejected")

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Units)
}

func TestApply_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := catalogs()
	f, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	res, err := Apply(ctx, f, c)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"unit": 2, "classification": 1, "user": 1}, res.Created)

	res, err = Apply(ctx, f, c)
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, map[string]int{"unit": 2, "classification": 1, "user": 1}, res.Updated)

	got, err := c.Classifications.Get(ctx, "PR.01.01")
	require.NoError(t, err)
	assert.Equal(t, "PR", got.MainIssueCode)
	u, err := c.Users.Get(ctx, "kepala")
	require.NoError(t, err)
	assert.Equal(t, "kepala@kantor.go.id", u.Email)
}

func TestApply_StopsOnRejectedItem(t *testing.T) {
	ctx := context.Background()
	units := new(serviceMocks.MockCatalog[model.Unit])
	units.On("Create", ctx, mock.Anything).Return(nil, apperror.Validation("code", "is required")).Once()

	f := &File{Units: []model.Unit{{ID: "u1"}, {ID: "u2"}}}
	_, err := Apply(ctx, f, Catalogs{Units: units})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.ErrorContains(t, err, `seed unit "u1"`)
	units.AssertExpectations(t)
}
