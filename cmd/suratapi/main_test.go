package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE", "memory")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String() + errOut.String(), err
}

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
units:
  - id: u1
    code: WIM
    name: KPP
classifications:
  - code: PR.01.01
users:
  - id: k1
    email: kepala@kantor.go.id
    name: Kepala
    unit_id: u1
`), 0o600))

	out, err := run(t, "seed", path)

	require.NoError(t, err)
	assert.Contains(t, out, "1 created, 0 updated")
}

func TestSeedCommand_MissingFile(t *testing.T) {
	_, err := run(t, "seed", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNumberPreview_UnknownUnit(t *testing.T) {
	out, err := run(t, "number", "preview", "--unit", "ghost", "--classification", "PR.01.01")

	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.code)
	assert.Contains(t, out, "ghost")
}

func TestUnknownStore(t *testing.T) {
	t.Setenv("STORE", "mongo")
	root := newRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"number", "preview", "--unit", "u", "--classification", "c"})

	assert.ErrorContains(t, root.Execute(), `unknown STORE "mongo"`)
}

func TestRejectsIncompleteNumberTemplate(t *testing.T) {
	t.Setenv("NUMBER_TEMPLATE", "[KODE_UNIT_KERJA_LENGKAP]/[NOMOR_URUT_PER_MASALAH]")

	_, err := run(t, "number", "preview", "--unit", "u", "--classification", "c")

	assert.ErrorContains(t, err, "NUMBER_TEMPLATE")
}
