package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.ui", `<column><text value="{count}"/></column>`)

	ws := New(dir)

	doc, err := ws.Load("main.ui")
	require.NoError(t, err)
	assert.Equal(t, "main.ui", doc.Source)
	require.Len(t, doc.Roots, 1)

	again, err := ws.Load("main.ui")
	require.NoError(t, err)
	assert.Same(t, doc, again)

	assert.Equal(t, []string{filepath.Join(dir, "main.ui")}, ws.LoadedFiles())
}

func TestLoadReturnsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.ui", `<row><text value="{1 +}"/><text value="ok"/></row>`)

	doc, err := New(dir).Load("bad.ui")
	require.NoError(t, err)
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, diag.ExpectedExpression, doc.Diagnostics[0].Kind)
	assert.Equal(t, "bad.ui", doc.Diagnostics[0].Span.Source)
}

func TestLoadFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.ui", `<row></column>`)

	ws := New(dir)

	_, err := ws.Load("broken.ui")

	var derr *diag.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, diag.MismatchedClosingTag, derr.Kind)
	assert.Empty(t, ws.LoadedFiles())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(t.TempDir()).Load("nope.ui")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWithContentsReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.ui", `<row/>`)

	ws := New(dir)

	first, err := ws.Load("main.ui")
	require.NoError(t, err)

	second, err := ws.LoadWithContents("main.ui", []byte(`<column/><space/>`))
	require.NoError(t, err)
	assert.Len(t, second.Roots, 2)

	cached, err := ws.Load("main.ui")
	require.NoError(t, err)
	assert.Same(t, second, cached)
	assert.NotSame(t, first, cached)

	ws.Forget("main.ui")

	reloaded, err := ws.Load("main.ui")
	require.NoError(t, err)
	assert.Len(t, reloaded.Roots, 1)
}

func TestLoadAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abs.ui", `<space/>`)

	doc, err := New("/somewhere/else").Load(filepath.Join(dir, "abs.ui"))
	require.NoError(t, err)
	assert.Len(t, doc.Roots, 1)
}
