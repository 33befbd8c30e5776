package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verilab/harnessctl/internal/errors"
	"github.com/verilab/harnessctl/internal/log"
)

const registryContent = `
export:
  - 7:
      - context:
          - lib/axi_checker.py: verification/axi_checker.py
          - lib/scoreboard.py: verification/scoreboard.py
  - 12:
      - context:
          - lib/fifo_model.py: rtl/fifo_model.py
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveKeepsRegistryOrder(t *testing.T) {
	mappings, err := Resolve(7, writeRegistry(t, registryContent))
	require.NoError(t, err)

	assert.Equal(t, []Mapping{
		{Source: "lib/axi_checker.py", Dest: "verification/axi_checker.py"},
		{Source: "lib/scoreboard.py", Dest: "verification/scoreboard.py"},
	}, mappings)
}

func TestResolveAbsentIDMeansZeroInjections(t *testing.T) {
	mappings, err := Resolve(999, writeRegistry(t, registryContent))
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestResolveMissingRegistryMeansZeroInjections(t *testing.T) {
	mappings, err := Resolve(7, filepath.Join(t.TempDir(), "export.yml"))
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestResolveMalformedRegistry(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{"},
		{"multi-key context mapping", "export:\n  - 7:\n      - context:\n          - {a: b, c: d}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(7, writeRegistry(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeRegistryInvalid, errors.CodeOf(err))
		})
	}
}

func TestInjectCopiesAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "checker.py")
	dst := filepath.Join(dir, "dest.py")
	require.NoError(t, os.WriteFile(src, []byte("new content"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("stale"), 0o644))

	err := Inject([]Mapping{{Source: src, Dest: dst}}, log.Default())
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new content", string(got))
}

func TestInjectMissingSourceIsFatal(t *testing.T) {
	dir := t.TempDir()
	err := Inject([]Mapping{{
		Source: filepath.Join(dir, "missing.py"),
		Dest:   filepath.Join(dir, "dest.py"),
	}}, log.Default())

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInjectFailed, errors.CodeOf(err))
}

func TestCleanupRemovesInjectedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("y"), 0o644))

	Cleanup([]Mapping{{Dest: a}, {Dest: b}}, log.Default())

	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
}

func TestCleanupToleratesMissingFilesAndContinues(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.py")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))

	// The missing file is listed first; it must not stop the rest.
	Cleanup([]Mapping{
		{Dest: filepath.Join(dir, "gone.py")},
		{Dest: present},
	}, log.Default())

	assert.NoFileExists(t, present)
}

func TestCleanupIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.py")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	mappings := []Mapping{{Dest: a}}

	Cleanup(mappings, log.Default())
	Cleanup(mappings, log.Default())
	Cleanup(nil, log.Default())

	assert.NoFileExists(t, a)
}
