package core

import (
	"path/filepath"
	"strings"

	"flymake/internal/types"
)

// LibraryName returns the archive file name for a library-rule
// folder: "<folder-basename>.a", except folders literally named
// "lib/" or "library/" use the project's name instead, per §4.5.
func LibraryName(state *types.ProjectState, folder string) string {
	base := strings.TrimRight(filepath.Base(filepath.Clean(folder)), "/")
	if base == "lib" || base == "library" {
		base = state.Name
	}
	return base + ".a"
}

// ExecutableName returns the executable file name for a
// source-program-rule folder: the folder basename, except folders
// literally named "src/" or "source/" use the project's name instead,
// per §4.5.
func ExecutableName(state *types.ProjectState, folder string) string {
	base := strings.TrimRight(filepath.Base(filepath.Clean(folder)), "/")
	if base == "src" || base == "source" {
		base = state.Name
	}
	return base
}
