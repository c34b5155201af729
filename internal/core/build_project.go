package core

import (
	"context"

	"flymake/internal/types"
)

// BuildWholeProject builds every folder rule in state, libraries
// first (so programs and tools link against freshly-built archives),
// then source-program and tool folders in declaration order.
func (b FolderBuilder) BuildWholeProject(ctx context.Context, state *types.ProjectState, opts BuildOptions) (bool, error) {
	builtAny := false

	for _, rule := range state.Folders {
		if rule.Kind != types.RuleLibrary {
			continue
		}
		built, err := b.BuildLibrary(ctx, state, rule, opts)
		if err != nil {
			return false, err
		}
		builtAny = builtAny || built
	}

	for _, rule := range state.Folders {
		switch rule.Kind {
		case types.RuleSource:
			built, err := b.BuildSourceProgram(ctx, state, rule, opts)
			if err != nil {
				return false, err
			}
			builtAny = builtAny || built
		case types.RuleTool:
			built, err := b.BuildTools(ctx, state, rule, opts, "")
			if err != nil {
				return false, err
			}
			builtAny = builtAny || built
		}
	}

	return builtAny, nil
}

// BuildDependencies builds every unbuilt package/git dependency's
// library-rule folders, depth-first so a dependency's own
// dependencies are archived before the dependency itself, per §4.6's
// "dependency's libraries are built before the root's libraries and
// programs" ordering. depOpts.ForceRebuild is only honored here when
// the caller set it for a full rebuild (the CLI's --all, not the
// plain -B which applies to project files only); dependencies already
// built earlier in this run (dep.Built) are skipped.
func (b FolderBuilder) BuildDependencies(ctx context.Context, state *types.ProjectState, depOpts BuildOptions) error {
	root := state.Root()
	for _, dep := range state.Deps {
		if dep.Built || dep.SubState == nil {
			continue
		}
		if err := b.BuildDependencies(ctx, dep.SubState, depOpts); err != nil {
			return err
		}
		recompiled := false
		for _, rule := range dep.SubState.Folders {
			if rule.Kind != types.RuleLibrary {
				continue
			}
			built, err := b.BuildLibrary(ctx, dep.SubState, rule, depOpts)
			if err != nil {
				return err
			}
			recompiled = recompiled || built
		}
		dep.Built = true
		if recompiled || dep.SubState.LibraryRecompiled {
			root.LibraryRecompiled = true
		}
	}
	return nil
}

// BuildTarget dispatches to the folder builder matching target.Kind.
func (b FolderBuilder) BuildTarget(ctx context.Context, state *types.ProjectState, target types.Target, opts BuildOptions) (bool, error) {
	switch target.Kind {
	case types.RuleWholeProject:
		return b.BuildWholeProject(ctx, state, opts)
	case types.RuleLibrary:
		return b.BuildLibrary(ctx, state, types.NewFolderRule(target.Folder, types.RuleLibrary), opts)
	case types.RuleSource:
		return b.BuildSourceProgram(ctx, state, types.NewFolderRule(target.Folder, types.RuleSource), opts)
	case types.RuleTool:
		filter := ""
		if target.File != "" {
			filter = stemOf(target.File)
		}
		return b.BuildTools(ctx, state, types.NewFolderRule(target.Folder, types.RuleTool), opts, filter)
	default:
		return false, nil
	}
}
