package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"flymake/internal/types"
)

// BuildSourceProgram compiles every source file under rule.Folder and
// links them into a single executable named by ExecutableName.
func (b FolderBuilder) BuildSourceProgram(ctx context.Context, state *types.ProjectState, rule types.FolderRule, opts BuildOptions) (bool, error) {
	sources, err := ClassifySources(rule.Folder, extensionSet(state.Compilers), 3)
	if err != nil {
		return false, err
	}
	if len(sources) == 0 {
		log.Ctx(ctx).Debug().Str("folder", rule.Folder).Msg("no source files, nothing to build")
		return false, nil
	}

	outDir := filepath.Join(rule.Folder, "out")
	var objects []string
	var linkRule types.CompilerRule
	haveLinkRule := false
	compiledAny := false
	for _, src := range sources {
		state.FilesEncountered++
		compilerRule, ok := ruleFor(state.Compilers, extOf(src))
		if !ok {
			continue
		}
		if !haveLinkRule {
			linkRule = compilerRule
			haveLinkRule = true
		}
		compiled, err := CompileFileWithIncludes(ctx, compilerRule, src, outDir, state.IncludePaths, opts)
		if err != nil {
			return false, err
		}
		if compiled {
			compiledAny = true
			state.FilesCompiled++
		}
		objects = append(objects, ObjectPath(src, outDir))
	}

	execPath := filepath.Join(rule.Folder, ExecutableName(state, rule.Folder))
	execExists := false
	if _, err := os.Stat(execPath); err == nil {
		execExists = true
	}
	if !compiledAny && execExists && !opts.ForceRebuild && !state.LibraryRecompiled {
		log.Ctx(ctx).Debug().Str("folder", rule.Folder).Msg("folder up to date")
		return false, nil
	}
	if !haveLinkRule {
		return false, nil
	}
	if err := LinkExecutable(ctx, linkRule, objects, state.Libraries, execPath, opts); err != nil {
		return false, err
	}
	return true, nil
}
