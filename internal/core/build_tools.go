package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"flymake/internal/types"
)

// BuildTools compiles each tool in rule.Folder into its own
// executable, named after the tool's shared basename prefix.
// toolFilter, when non-empty, restricts the build to that single
// tool's sources (used by `flymake run <folder>/<file>`).
func (b FolderBuilder) BuildTools(ctx context.Context, state *types.ProjectState, rule types.FolderRule, opts BuildOptions, toolFilter string) (bool, error) {
	sources, err := ClassifySources(rule.Folder, extensionSet(state.Compilers), 0)
	if err != nil {
		return false, err
	}
	if len(sources) == 0 {
		log.Ctx(ctx).Debug().Str("folder", rule.Folder).Msg("no source files, nothing to build")
		return false, nil
	}

	tools := GroupIntoTools(sources)
	if toolFilter != "" {
		found := false
		for _, tool := range tools {
			if tool.Name == toolFilter {
				found = true
				break
			}
		}
		if !found {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("no tool named " + toolFilter + " in " + rule.Folder)
		}
	}

	builtAny := false
	outDir := filepath.Join(rule.Folder, "out")

	for _, tool := range tools {
		if toolFilter != "" && tool.Name != toolFilter {
			continue
		}
		var objects []string
		var linkRule types.CompilerRule
		haveLinkRule := false
		compiledAny := false
		for _, src := range tool.Sources {
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
		if !haveLinkRule {
			continue
		}
		execPath := filepath.Join(rule.Folder, tool.Name)
		execExists := false
		if _, err := os.Stat(execPath); err == nil {
			execExists = true
		}
		if !compiledAny && execExists && !opts.ForceRebuild {
			log.Ctx(ctx).Debug().Str("tool", tool.Name).Msg("tool up to date")
			continue
		}
		if err := LinkExecutable(ctx, linkRule, objects, state.Libraries, execPath, opts); err != nil {
			return false, err
		}
		builtAny = true
	}
	return builtAny, nil
}
