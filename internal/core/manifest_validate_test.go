package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"flymake/internal/types"
)

func TestValidateCompilerRuleRequiresPlaceholdersExactlyOnce(t *testing.T) {
	rule := types.CompilerRule{
		Extensions: []string{"c"},
		Compile:    "gcc -c {in} {out}",
		Link:       "gcc {in} {out}",
	}
	require.NoError(t, ValidateCompilerRule(rule))

	bad := rule
	bad.Compile = "gcc -c {in} {in} {out}"
	require.Error(t, ValidateCompilerRule(bad))

	missingOut := rule
	missingOut.Link = "gcc {in}"
	require.Error(t, ValidateCompilerRule(missingOut))
}

func TestBuildProjectStateSimpleProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.c"), []byte("int main(){return 0;}"), 0o644))

	state, err := BuildProjectState(context.Background(), root, types.ProjectManifest{}, true)
	require.NoError(t, err)
	require.Equal(t, filepath.Base(root), state.Name)
	require.Equal(t, "*", state.Version)
	require.Len(t, state.Folders, 1)
	require.Equal(t, types.RuleSource, state.Folders[0].Kind)
}

func TestBuildProjectStateWellKnownFolders(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))

	state, err := BuildProjectState(context.Background(), root, types.ProjectManifest{}, false)
	require.NoError(t, err)
	require.Len(t, state.Folders, 2)
}
