package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"flymake/internal/core"
	"flymake/internal/types"
)

type BuildRequest struct {
	Path                string
	Target              string
	ForceRebuild        bool
	RebuildDependencies bool // --all: also force-rebuild dependencies
	Debug               bool
	DebugLevel          int // -D=N: value substituted into -DDEBUG=N
	DryRun              bool
	Warnings            bool
	ForcedRule          types.RuleKind
	DebugState          bool // --debug-state: dump the resolved project tree as YAML
}

type BuildResult struct {
	Built     bool
	Target    types.Target
	StateDump string // set when req.DebugState is true
}

// Build resolves req.Target against the discovered project and builds
// it, following library-before-program ordering when the target is
// the whole project.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	state, err := s.LoadProject(ctx, req.Path)
	if err != nil {
		return BuildResult{}, err
	}

	if len(state.Folders) == 0 {
		log.Ctx(ctx).Info().Msg("empty project: nothing to build")
		return BuildResult{}, nil
	}

	target, err := core.ResolveTarget(state, req.Target, req.ForcedRule)
	if err != nil {
		return BuildResult{}, err
	}

	depOpts := core.BuildOptions{
		ForceRebuild: req.RebuildDependencies,
		Debug:        req.Debug,
		DebugLevel:   req.DebugLevel,
		DryRun:       req.DryRun,
		Warnings:     req.Warnings,
	}
	if err := s.Builder.BuildDependencies(ctx, state, depOpts); err != nil {
		return BuildResult{}, err
	}

	opts := core.BuildOptions{
		ForceRebuild: req.ForceRebuild,
		Debug:        req.Debug,
		DebugLevel:   req.DebugLevel,
		DryRun:       req.DryRun,
		Warnings:     req.Warnings,
	}

	built, err := s.Builder.BuildTarget(ctx, state, target, opts)
	if err != nil {
		return BuildResult{}, err
	}

	if !built {
		log.Ctx(ctx).Info().Msg("up to date")
	}

	result := BuildResult{Built: built, Target: target}
	if req.DebugState {
		dump, err := core.DumpState(state)
		if err != nil {
			return result, err
		}
		result.StateDump = dump
	}
	return result, nil
}

// ValidateForcedRuleArg translates the CLI's --lib/--rl/--rs/--rt
// mutually-exclusive flag group into a single RuleKind, erroring if
// more than one was given.
func ValidateForcedRuleArg(lib, rl, rs, rt bool) (types.RuleKind, error) {
	count := 0
	kind := types.RuleNone
	for _, pair := range []struct {
		set  bool
		kind types.RuleKind
	}{
		{lib, types.RuleLibrary},
		{rl, types.RuleLibrary},
		{rs, types.RuleSource},
		{rt, types.RuleTool},
	} {
		if pair.set {
			count++
			kind = pair.kind
		}
	}
	if count > 1 {
		return types.RuleNone, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("only one of --lib/--rl/--rs/--rt may be given")
	}
	return kind, nil
}
