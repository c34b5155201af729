package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"flymake/internal/types"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("// stub\n"), 0o644))
}

func TestClassifySources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.c"))
	writeFile(t, filepath.Join(dir, "b.cpp"))
	writeFile(t, filepath.Join(dir, "readme.txt"))
	writeFile(t, filepath.Join(dir, "nested", "c.c"))
	writeFile(t, filepath.Join(dir, "out", "a.o"))

	exts := map[string]struct{}{"c": {}, "cpp": {}}
	files, err := ClassifySources(dir, exts, 3)
	require.NoError(t, err)
	require.Len(t, files, 3)
}

func TestClassifySourcesMissingFolder(t *testing.T) {
	files, err := ClassifySources(filepath.Join(t.TempDir(), "missing"), map[string]struct{}{"c": {}}, 3)
	require.NoError(t, err)
	require.Nil(t, files)
}

func TestClassifySourcesNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.c")
	writeFile(t, file)
	_, err := ClassifySources(file, map[string]struct{}{"c": {}}, 3)
	require.Error(t, err)
}

func TestGroupIntoTools(t *testing.T) {
	sources := []string{
		"/t/test1.c",
		"/t/test1_helper.c",
		"/t/test2.c",
	}
	tools := GroupIntoTools(sources)
	require.Len(t, tools, 2)
	require.Equal(t, types.Tool{Name: "test1", Sources: []string{"/t/test1.c", "/t/test1_helper.c"}}, tools[0])
	require.Equal(t, types.Tool{Name: "test2", Sources: []string{"/t/test2.c"}}, tools[1])
}
