package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"flymake/internal/ports"
	"flymake/internal/types"
)

// fakeArchiver records every Archive call instead of shelling out to
// "ar", so these tests run without a real archiver on PATH.
type fakeArchiver struct {
	calls int
}

func (f *fakeArchiver) Archive(_ context.Context, outPath string, objects []string, dryRun bool) error {
	f.calls++
	if dryRun {
		return nil
	}
	return os.WriteFile(outPath, []byte("archive"), 0o644)
}

var _ ports.ArchiverPort = (*fakeArchiver)(nil)

// cpCompilerRule uses "cp" in place of a real compiler/linker, exactly
// matching the compiler-rule placeholder contract (ValidateCompilerRule
// only requires {in}/{out} to appear; {incs}/{warn}/{debug}/{libs} are
// optional) without needing gcc on the test machine.
func cpCompilerRule() types.CompilerRule {
	return types.CompilerRule{
		Extensions:  []string{"c"},
		Compile:     "cp {in} {out}",
		Link:        "cat {in} > {out}",
		IncludeFlag: "-I",
	}
}

// TestBuildWholeProjectLibraryAndProgram matches spec scenario 2: a
// library folder is built before the source-program folder that links
// against it, and a second build with no source changes issues no
// compiles.
func TestBuildWholeProjectLibraryAndProgram(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "util.c"), []byte("int add(){return 0;}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.c"), []byte("int main(){return 0;}"), 0o644))

	state := &types.ProjectState{
		RootPath:  root,
		Name:      "demo",
		Compilers: []types.CompilerRule{cpCompilerRule()},
		Folders: []types.FolderRule{
			types.NewFolderRule(filepath.Join(root, "lib"), types.RuleLibrary),
			types.NewFolderRule(filepath.Join(root, "src"), types.RuleSource),
		},
	}

	archiver := &fakeArchiver{}
	builder := NewFolderBuilder(archiver)
	opts := BuildOptions{Warnings: true}

	built, err := builder.BuildWholeProject(context.Background(), state, opts)
	require.NoError(t, err)
	require.True(t, built)
	require.Equal(t, 1, archiver.calls)
	require.FileExists(t, filepath.Join(root, "lib", "demo.a"))
	require.FileExists(t, filepath.Join(root, "src", "demo"))
	require.Equal(t, 2, state.FilesCompiled)

	// Second build: nothing changed, nothing recompiled, archiver not
	// invoked again, and the program is not relinked.
	state.FilesCompiled = 0
	state.LibraryRecompiled = false
	builtAgain, err := builder.BuildWholeProject(context.Background(), state, opts)
	require.NoError(t, err)
	require.False(t, builtAgain)
	require.Equal(t, 0, state.FilesCompiled)
	require.Equal(t, 1, archiver.calls, "archiver must not run again when nothing changed")
}

// TestBuildWholeProjectRelinksWhenLibraryChanges matches spec scenario
// 5: touching a library source forces a relink of the program that
// depends on it even though none of the program's own sources changed.
func TestBuildWholeProjectRelinksWhenLibraryChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	libSrc := filepath.Join(root, "lib", "util.c")
	require.NoError(t, os.WriteFile(libSrc, []byte("int add(){return 0;}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.c"), []byte("int main(){return 0;}"), 0o644))

	newState := func() *types.ProjectState {
		return &types.ProjectState{
			RootPath:  root,
			Name:      "demo",
			Compilers: []types.CompilerRule{cpCompilerRule()},
			Folders: []types.FolderRule{
				types.NewFolderRule(filepath.Join(root, "lib"), types.RuleLibrary),
				types.NewFolderRule(filepath.Join(root, "src"), types.RuleSource),
			},
		}
	}
	archiver := &fakeArchiver{}
	builder := NewFolderBuilder(archiver)

	_, err := builder.BuildWholeProject(context.Background(), newState(), BuildOptions{})
	require.NoError(t, err)

	execPath := filepath.Join(root, "src", "demo")
	// Backdate the program so a relink shows up as a newer mtime.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(execPath, old, old))
	firstInfo, err := os.Stat(execPath)
	require.NoError(t, err)

	// Ensure the next mtime is observably later, then touch the
	// library source so it is newer than its compiled object.
	time.Sleep(10 * time.Millisecond)
	later := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(libSrc, later, later))

	built, err := builder.BuildWholeProject(context.Background(), newState(), BuildOptions{})
	require.NoError(t, err)
	require.True(t, built)

	secondInfo, err := os.Stat(execPath)
	require.NoError(t, err)
	require.True(t, secondInfo.ModTime().After(firstInfo.ModTime()))
}

// TestBuildToolsGroupsByPrefix matches spec scenario 3: a tool folder
// with test_foo.c/test_foo_helpers.c/test_bar.c produces exactly two
// tool executables.
func TestBuildToolsGroupsByPrefix(t *testing.T) {
	root := t.TempDir()
	testDir := filepath.Join(root, "test")
	require.NoError(t, os.MkdirAll(testDir, 0o755))
	for _, name := range []string{"test_foo.c", "test_foo_helpers.c", "test_bar.c"} {
		require.NoError(t, os.WriteFile(filepath.Join(testDir, name), []byte("int main(){return 0;}"), 0o644))
	}

	state := &types.ProjectState{
		RootPath:  root,
		Name:      "demo",
		Compilers: []types.CompilerRule{cpCompilerRule()},
	}
	rule := types.NewFolderRule(testDir, types.RuleTool)

	builder := NewFolderBuilder(&fakeArchiver{})
	built, err := builder.BuildTools(context.Background(), state, rule, BuildOptions{}, "")
	require.NoError(t, err)
	require.True(t, built)
	require.FileExists(t, filepath.Join(testDir, "test_foo"))
	require.FileExists(t, filepath.Join(testDir, "test_bar"))
}

// TestBuildToolsFilterUnknownNameFails matches §4.5: a tool filter
// that matches nothing in the folder is a bad-prog error.
func TestBuildToolsFilterUnknownNameFails(t *testing.T) {
	root := t.TempDir()
	testDir := filepath.Join(root, "test")
	require.NoError(t, os.MkdirAll(testDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "test_foo.c"), []byte("int main(){return 0;}"), 0o644))

	state := &types.ProjectState{
		RootPath:  root,
		Compilers: []types.CompilerRule{cpCompilerRule()},
	}
	rule := types.NewFolderRule(testDir, types.RuleTool)
	builder := NewFolderBuilder(&fakeArchiver{})
	_, err := builder.BuildTools(context.Background(), state, rule, BuildOptions{}, "nonexistent")
	require.Error(t, err)
}

// TestBuildDependenciesBuildsSubProjectLibrariesFirst matches §4.6:
// a package dependency's own library-rule folder is archived before
// the root's LibraryRecompiled flag reflects it.
func TestBuildDependenciesBuildsSubProjectLibrariesFirst(t *testing.T) {
	root := t.TempDir()
	depRoot := filepath.Join(root, "depA")
	require.NoError(t, os.MkdirAll(filepath.Join(depRoot, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(depRoot, "lib", "util.c"), []byte("int x(){return 0;}"), 0o644))

	depState := &types.ProjectState{
		RootPath:  depRoot,
		Name:      "depA",
		Compilers: []types.CompilerRule{cpCompilerRule()},
		Folders: []types.FolderRule{
			types.NewFolderRule(filepath.Join(depRoot, "lib"), types.RuleLibrary),
		},
	}
	rootState := &types.ProjectState{
		RootPath: root,
		Name:     "root",
		Deps: []*types.Dependency{
			{Name: "depA", Shape: types.DependencyShapePackage, SubState: depState},
		},
	}
	depState.Parent = rootState

	archiver := &fakeArchiver{}
	builder := NewFolderBuilder(archiver)
	err := builder.BuildDependencies(context.Background(), rootState, BuildOptions{})
	require.NoError(t, err)
	require.True(t, rootState.Deps[0].Built)
	require.True(t, rootState.LibraryRecompiled)
	require.FileExists(t, filepath.Join(depRoot, "lib", "depA.a"))
}
