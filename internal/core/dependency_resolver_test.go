package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"flymake/internal/types"
)

// fakeManifestPort serves pre-built manifests keyed by path, so
// dependency-resolver tests don't need a real TOML file on disk for
// every sub-project.
type fakeManifestPort struct {
	byPath map[string]types.ProjectManifest
}

func (f fakeManifestPort) Load(path string) (types.ProjectManifest, error) {
	if m, ok := f.byPath[path]; ok {
		return m, nil
	}
	return types.ProjectManifest{}, nil
}

func (f fakeManifestPort) Write(string, types.ProjectManifest) error { return nil }

type fakeGitPort struct{}

func (fakeGitPort) Clone(context.Context, string, string, string) error { return nil }
func (fakeGitPort) ResolveVersion(context.Context, string, string) (string, error) {
	return "", nil
}
func (fakeGitPort) Checkout(context.Context, string, string) error { return nil }

func writePrebuilt(t *testing.T, root string) (libPath, incDir string) {
	t.Helper()
	incDir = filepath.Join(root, "inc") + string(filepath.Separator)
	require.NoError(t, os.MkdirAll(incDir, 0o755))
	libPath = filepath.Join(root, "lib.a")
	require.NoError(t, os.WriteFile(libPath, []byte("ar-archive"), 0o644))
	return libPath, incDir
}

// TestResolveDetectsIncludeConflict: a prebuilt dependency declared
// under one root, where a sibling package's own manifest re-declares
// the same name with a different include path, must fail rather than
// silently registering a second entry.
func TestResolveDetectsIncludeConflict(t *testing.T) {
	root := t.TempDir()
	aLib, aInc := writePrebuilt(t, filepath.Join(root, "a"))

	bDir := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(bDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(bDir, "lib"), 0o755))
	otherLib, otherInc := writePrebuilt(t, filepath.Join(root, "a2"))

	bManifestPath := filepath.Join(bDir, ManifestFileName)
	manifestPort := fakeManifestPort{byPath: map[string]types.ProjectManifest{
		bManifestPath: {
			Dependencies: map[string]types.DependencySpec{
				"a": {Path: otherLib, Inc: otherInc},
			},
		},
	}}

	resolver := NewDependencyResolver(fakeGitPort{}, manifestPort)
	state := &types.ProjectState{RootPath: root, DepDir: filepath.Join(root, "deps") + string(filepath.Separator), Visiting: map[string]struct{}{}}

	rootManifest := types.ProjectManifest{
		Dependencies: map[string]types.DependencySpec{
			"a": {Path: aLib, Inc: aInc},
			"b": {Path: "b"},
		},
	}

	err := resolver.Resolve(context.Background(), state, rootManifest)
	require.Error(t, err)
}

func TestResolveAllowsCompatibleRedeclaration(t *testing.T) {
	root := t.TempDir()
	aLib, aInc := writePrebuilt(t, filepath.Join(root, "a"))

	bDir := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(filepath.Join(bDir, "lib"), 0o755))

	bManifestPath := filepath.Join(bDir, ManifestFileName)
	manifestPort := fakeManifestPort{byPath: map[string]types.ProjectManifest{
		bManifestPath: {
			Dependencies: map[string]types.DependencySpec{
				"a": {Path: aLib, Inc: aInc},
			},
		},
	}}

	resolver := NewDependencyResolver(fakeGitPort{}, manifestPort)
	state := &types.ProjectState{RootPath: root, DepDir: filepath.Join(root, "deps") + string(filepath.Separator), Visiting: map[string]struct{}{}}

	rootManifest := types.ProjectManifest{
		Dependencies: map[string]types.DependencySpec{
			"a": {Path: aLib, Inc: aInc},
			"b": {Path: "b"},
		},
	}

	err := resolver.Resolve(context.Background(), state, rootManifest)
	require.NoError(t, err)
	require.Len(t, state.Deps, 2)
}

func TestResolveGitRejectsVersionAndShaTogether(t *testing.T) {
	root := t.TempDir()
	resolver := NewDependencyResolver(fakeGitPort{}, fakeManifestPort{byPath: map[string]types.ProjectManifest{}})
	state := &types.ProjectState{RootPath: root, DepDir: filepath.Join(root, "deps") + string(filepath.Separator), Visiting: map[string]struct{}{}}

	_, err := resolver.resolveGit(context.Background(), state, "dep", types.DependencySpec{
		Git: "https://example.invalid/repo.git", Version: "1", Sha: "deadbeef",
	})
	require.Error(t, err)
}
