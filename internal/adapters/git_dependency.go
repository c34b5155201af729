package adapters

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/core"
	"flymake/internal/ports"
	"flymake/internal/shared"
)

// GitDependencyAdapter materializes git-backed dependencies by
// shelling out to the "git" binary, grounded directly on the
// teacher's loadGitProfile clone pattern (internal/adapters
// profile_source.go): exec.Command + CombinedOutput, errors wrapped
// via shared.CommandError.
type GitDependencyAdapter struct{}

func NewGitDependencyAdapter() GitDependencyAdapter {
	return GitDependencyAdapter{}
}

// Clone clones repo into dir. If dir already contains a checkout
// (".git" present), Clone is a no-op - flymake re-resolves an existing
// dependency folder in place rather than re-cloning on every build.
func (a GitDependencyAdapter) Clone(ctx context.Context, repo, branch, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return nil
	}

	args := []string{"clone", "-q", repo}
	if strings.TrimSpace(branch) != "" {
		args = append(args, "-b", branch)
	}
	args = append(args, dir)

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clone " + repo).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// versionToken matches a semver-like token (N, N.N, or N.N.N)
// introduced by "v", "ver", or "version" (case-insensitive), the same
// convention the original tool scans `git log --oneline` lines for.
var versionToken = regexp.MustCompile(`(?i)\bv(?:er(?:sion)?)?\.?\s*(\d+(?:\.\d+){0,2})\b`)

// shaToken matches a leading hex commit SHA at the start of a
// `git log --oneline` line.
var shaToken = regexp.MustCompile(`^[0-9a-f]{7,40}`)

// ResolveVersion scans `git log --oneline` for the newest commit whose
// message contains a version token accepted by rangeExpr, returning
// its full SHA. Lines are scanned in log order (newest first), so the
// first match is also the newest matching commit.
func (a GitDependencyAdapter) ResolveVersion(ctx context.Context, dir, rangeExpr string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "log", "--oneline", "--no-abbrev-commit")
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read git log in " + dir).
			WithCause(err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		sha := shaToken.FindString(line)
		if sha == "" {
			continue
		}
		match := versionToken.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		version := match[1]
		if core.RangeAccepts(rangeExpr, version) {
			return sha, nil
		}
	}

	return "", errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("version not found for range %q in %s", rangeExpr, dir))
}

// Checkout checks out ref (branch, tag, or commit SHA) in dir.
func (a GitDependencyAdapter) Checkout(ctx context.Context, dir, ref string) error {
	cmd := exec.CommandContext(ctx, "git", "checkout", "-q", ref)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to checkout " + ref + " in " + dir).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.GitPort = GitDependencyAdapter{}
