//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"flymake/internal/adapters"
)

// TestGitDependencyMaterializationWithTestcontainers spins up a
// disposable container acting as a bare git remote, pushes a handful
// of version-tagged commits into it, and drives
// GitDependencyAdapter.Clone/ResolveVersion/Checkout against it end to
// end - exercising the git dependency shape (§4.6) the way flymake's
// dependency resolver does, without mocking the git binary.
func TestGitDependencyMaterializationWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers e2e in short mode")
	}

	ctx := context.Background()
	endpoint, port, cleanup := startGitDaemon(ctx, t)
	t.Cleanup(cleanup)

	seedBareRepo(t, endpoint, port)

	repoURL := fmt.Sprintf("git://127.0.0.1:%s/repo.git", port)
	workDir := t.TempDir()
	depDir := filepath.Join(workDir, "deps", "flylib")

	git := adapters.NewGitDependencyAdapter()
	require.NoError(t, git.Clone(ctx, repoURL, "", depDir))
	require.DirExists(t, filepath.Join(depDir, ".git"))

	// Clone is a no-op once the checkout already exists.
	require.NoError(t, git.Clone(ctx, repoURL, "", depDir))

	sha, err := git.ResolveVersion(ctx, depDir, "1")
	require.NoError(t, err)
	require.NotEmpty(t, sha)

	require.NoError(t, git.Checkout(ctx, depDir, sha))

	headSHA := runGit(t, depDir, "rev-parse", "HEAD")
	require.Equal(t, sha, headSHA)

	marker, err := os.ReadFile(filepath.Join(depDir, "VERSION"))
	require.NoError(t, err)
	require.Contains(t, string(marker), "1.")
}

func startGitDaemon(ctx context.Context, t *testing.T) (host string, port string, cleanup func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "alpine:3.19",
		ExposedPorts: []string{"9418/tcp"},
		Cmd: []string{
			"sh", "-c",
			"apk add --no-cache git >/dev/null && mkdir -p /srv/git/repo.git && " +
				"git init --bare /srv/git/repo.git >/dev/null && " +
				"git daemon --reuseaddr --base-path=/srv/git --export-all --verbose",
		},
		WaitingFor: wait.ForListeningPort("9418/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	mappedHost, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "9418/tcp")
	require.NoError(t, err)

	cleanup = func() { _ = container.Terminate(ctx) }
	return mappedHost, mappedPort.Port(), cleanup
}

// seedBareRepo creates a working clone, commits a few version-tagged
// revisions matching the "v"/"ver"/"version" git-log convention
// GitDependencyAdapter.ResolveVersion scans for, and pushes them to
// the daemon started above.
func seedBareRepo(t *testing.T, host, port string) {
	t.Helper()
	work := t.TempDir()
	runGit(t, "", "clone", fmt.Sprintf("git://%s:%s/repo.git", host, port), work)

	commit := func(version, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(work, "VERSION"), []byte(content), 0o644))
		runGit(t, work, "add", "VERSION")
		runGit(t, work, "-c", "user.email=ci@example.com", "-c", "user.name=ci",
			"commit", "-m", "release version "+version)
	}
	commit("1.0.0", "1.0.0\n")
	commit("1.2.0", "1.2.0\n")
	commit("2.0.0", "2.0.0\n")

	// Push under whatever branch name this git installation checked
	// out by default, so the bare repo's unborn HEAD symref (set by
	// "git init --bare" to that same default) resolves once the
	// branch exists - avoiding a hardcoded "main"/"master" mismatch.
	branch := runGit(t, work, "symbolic-ref", "--short", "HEAD")
	runGit(t, work, "push", "origin", "HEAD:refs/heads/"+branch)
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
	return trimNewline(string(out))
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
