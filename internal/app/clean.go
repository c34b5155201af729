package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"flymake/internal/core"
	"flymake/internal/types"
)

type CleanRequest struct {
	Path           string
	RemovePrograms bool // -B: also remove built libraries/programs
	RemoveDeps     bool // --all: also remove the deps/ tree
}

type CleanResult struct {
	FoldersCleaned int
}

// Clean removes each folder rule's out/ directory of object files,
// and, when RemovePrograms is set, the folder's built library or
// program as well. RemoveDeps additionally removes the whole deps/
// tree, forcing re-materialization of git/package dependencies on the
// next build.
func (s Service) Clean(ctx context.Context, req CleanRequest) (CleanResult, error) {
	state, err := s.LoadProject(ctx, req.Path)
	if err != nil {
		return CleanResult{}, err
	}

	cleaned := 0
	for _, rule := range state.Folders {
		outDir := filepath.Join(rule.Folder, "out")
		if err := os.RemoveAll(outDir); err != nil {
			return CleanResult{}, err
		}
		cleaned++

		if !req.RemovePrograms {
			continue
		}
		switch rule.Kind {
		case types.RuleLibrary:
			_ = os.Remove(filepath.Join(rule.Folder, core.LibraryName(state, rule.Folder)))
		case types.RuleSource:
			_ = os.Remove(filepath.Join(rule.Folder, core.ExecutableName(state, rule.Folder)))
		case types.RuleTool:
			removeToolExecutables(ctx, rule)
		}
	}

	if req.RemoveDeps {
		if err := os.RemoveAll(state.DepDir); err != nil {
			return CleanResult{}, err
		}
	}

	log.Ctx(ctx).Debug().Int("folders", cleaned).Msg("clean complete")
	return CleanResult{FoldersCleaned: cleaned}, nil
}

func removeToolExecutables(ctx context.Context, rule types.FolderRule) {
	entries, err := os.ReadDir(rule.Folder)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != "" {
			continue
		}
		_ = os.Remove(filepath.Join(rule.Folder, entry.Name()))
	}
}
