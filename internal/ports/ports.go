// Package ports declares the interfaces the application layer depends
// on; internal/adapters provides the concrete, exec/filesystem-backed
// implementations.
package ports

import (
	"context"

	"flymake/internal/types"
)

// ManifestPort loads and writes a project's manifest file.
type ManifestPort interface {
	Load(path string) (types.ProjectManifest, error)
	Write(path string, manifest types.ProjectManifest) error
}

// ArchiverPort builds a static library archive from object files.
type ArchiverPort interface {
	Archive(ctx context.Context, outPath string, objects []string, dryRun bool) error
}

// GitPort materializes a dependency's git-backed source tree.
type GitPort interface {
	// Clone clones repo into dir, optionally pinned to branch. Clone is
	// a no-op if dir already holds a git checkout (".git" present).
	Clone(ctx context.Context, repo, branch, dir string) error
	// ResolveVersion scans the repository's commit log for the newest
	// commit whose message contains a version token satisfying
	// rangeExpr, returning its commit SHA.
	ResolveVersion(ctx context.Context, dir, rangeExpr string) (sha string, err error)
	// Checkout checks out the given ref (branch, tag, or SHA) in dir.
	Checkout(ctx context.Context, dir, ref string) error
}

// FileSystemPort wraps the filesystem operations the orchestrator
// needs beyond plain os/filepath calls, so app-layer tests can fake
// them without touching disk.
type FileSystemPort interface {
	RemoveAll(path string) error
	MkdirAll(path string) error
	Exists(path string) bool
}
