package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"flymake/internal/types"
)

func echoRule() types.CompilerRule {
	return types.CompilerRule{
		Extensions:   []string{"c"},
		Compile:      "cp {in} {out}",
		Link:         "cat {in} > {out}",
		IncludeFlag:  "-I",
		Warn:         "-Wall",
		CompileDebug: "-g",
		LinkDebug:    "-g",
	}
}

func TestCompileFileWithIncludesCompilesOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}"), 0o644))
	outDir := filepath.Join(dir, "out")

	compiled, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, []string{"inc/"}, BuildOptions{Warnings: true})
	require.NoError(t, err)
	require.True(t, compiled)
	require.FileExists(t, filepath.Join(outDir, "a.o"))
}

func TestCompileFileWithIncludesSkipsWhenUpToDate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}"), 0o644))
	outDir := filepath.Join(dir, "out")

	_, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{})
	require.NoError(t, err)

	compiled, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{})
	require.NoError(t, err)
	require.False(t, compiled, "object newer than source must be skipped")
}

func TestCompileFileWithIncludesForceRebuild(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}"), 0o644))
	outDir := filepath.Join(dir, "out")

	_, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{})
	require.NoError(t, err)

	compiled, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{ForceRebuild: true})
	require.NoError(t, err)
	require.True(t, compiled, "ForceRebuild must bypass the mtime check")
}

func TestCompileFileWithIncludesRecompilesWhenSourceIsNewer(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}"), 0o644))
	outDir := filepath.Join(dir, "out")

	_, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{})
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))

	compiled, err := CompileFileWithIncludes(context.Background(), echoRule(), src, outDir, nil, BuildOptions{})
	require.NoError(t, err)
	require.True(t, compiled)
}

func TestCompileFileWithIncludesRejectsDirectorySource(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "a.c")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))

	_, err := CompileFileWithIncludes(context.Background(), echoRule(), srcDir, filepath.Join(dir, "out"), nil, BuildOptions{})
	require.Error(t, err)
}

func TestCompileFileWithIncludesMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CompileFileWithIncludes(context.Background(), echoRule(), filepath.Join(dir, "missing.c"), filepath.Join(dir, "out"), nil, BuildOptions{})
	require.Error(t, err)
}

func TestObjectPathDerivesFromBasename(t *testing.T) {
	got := ObjectPath("/proj/src/app.c", "/proj/src/out")
	require.Equal(t, filepath.Join("/proj/src/out", "app.o"), got)
}

func TestSubstituteIsSinglePassPerPlaceholder(t *testing.T) {
	// A value containing a placeholder-like substring must not be
	// rescanned once it has been written to the output: the {out}
	// injected by the {in} substitution is never touched by the {out}
	// pass that follows it in the original template.
	out := substitute("{in}-{out}", [2]string{"{in}", "{out}-literal"}, [2]string{"{out}", "final"})
	require.Equal(t, "{out}-literal-final", out)
}
