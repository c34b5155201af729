package app

import (
	"flymake/internal/adapters"
	"flymake/internal/core"
	"flymake/internal/ports"
)

// Service wires the real adapters into the orchestrator, mirroring
// the teacher's Service/NewService shape: one struct holding every
// port the application layer needs, constructed once at CLI startup.
type Service struct {
	Manifest ports.ManifestPort
	Archiver ports.ArchiverPort
	Git      ports.GitPort

	Builder  core.FolderBuilder
	Resolver core.DependencyResolver
}

func NewService() Service {
	manifest := adapters.NewManifestFileAdapter()
	archiver := adapters.NewArchiverAdapter()
	git := adapters.NewGitDependencyAdapter()
	return Service{
		Manifest: manifest,
		Archiver: archiver,
		Git:      git,
		Builder:  core.NewFolderBuilder(archiver),
		Resolver: core.NewDependencyResolver(git, manifest),
	}
}

// BuildRequest/BuildResult, CleanRequest/CleanResult, etc. live beside
// their Service methods (build.go, clean.go, run.go, test.go, new.go)
// rather than in one shared types.go, matching the size of each verb.
