package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/core"
	"flymake/internal/types"
)

type RunRequest struct {
	Path         string
	Target       string
	Args         []string // passthrough args after "--"
	ForceRebuild bool
	Debug        bool
	DebugLevel   int
	DryRun       bool
}

type RunResult struct {
	Run      int
	ExitCode int
}

// Run builds the resolved target (if needed) and executes it,
// forwarding req.Args and the process's stdio. An empty Target picks
// the project's source-program folder, preferring one literally named
// "src/" or "source/" per §4.8; a tool-folder target with no specific
// file runs every tool in it.
func (s Service) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	state, err := s.LoadProject(ctx, req.Path)
	if err != nil {
		return RunResult{}, err
	}

	target := types.Target{Kind: types.RuleNone}
	if strings.TrimSpace(req.Target) == "" {
		target, err = defaultRunTarget(state)
	} else {
		target, err = core.ResolveTarget(state, req.Target, types.RuleNone)
	}
	if err != nil {
		return RunResult{}, err
	}
	if target.Kind == types.RuleWholeProject || target.Kind == types.RuleLibrary {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("run requires a source-program or tool target, not " + target.Kind.String())
	}

	depOpts := core.BuildOptions{Debug: req.Debug, DebugLevel: req.DebugLevel, DryRun: req.DryRun}
	if err := s.Builder.BuildDependencies(ctx, state, depOpts); err != nil {
		return RunResult{}, err
	}

	opts := core.BuildOptions{ForceRebuild: req.ForceRebuild, Debug: req.Debug, DebugLevel: req.DebugLevel, DryRun: req.DryRun}
	if _, err := s.Builder.BuildTarget(ctx, state, target, opts); err != nil {
		return RunResult{}, err
	}

	if req.DryRun {
		return RunResult{}, nil
	}

	var execPaths []string
	switch target.Kind {
	case types.RuleSource:
		execPaths = []string{filepath.Join(target.Folder, core.ExecutableName(state, target.Folder))}
	case types.RuleTool:
		if target.File != "" {
			execPaths = []string{filepath.Join(target.Folder, stemOfPublic(target.File))}
		} else {
			sources, err := core.ClassifySources(target.Folder, extensionsOf(state), 0)
			if err != nil {
				return RunResult{}, err
			}
			for _, tool := range core.GroupIntoTools(sources) {
				execPaths = append(execPaths, filepath.Join(target.Folder, tool.Name))
			}
		}
	}
	if len(execPaths) == 0 {
		return RunResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no executable target resolved for run")
	}

	result := RunResult{}
	for _, execPath := range execPaths {
		result.Run++
		cmd := exec.CommandContext(ctx, execPath, req.Args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				result.ExitCode = exitErr.ExitCode()
				continue
			}
			return result, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to run " + execPath).
				WithCause(err)
		}
	}
	return result, nil
}

// defaultRunTarget implements the no-explicit-target rule from §4.8:
// prefer a source-program folder literally named "src/"/"source/",
// else the first declared source-program folder. Tool folders are
// only ever run as an explicitly resolved target, never picked as the
// no-args default - a project with only tool folders and no src/
// program has nothing to run.
func defaultRunTarget(state *types.ProjectState) (types.Target, error) {
	var firstSource, preferred *types.FolderRule
	for i := range state.Folders {
		rule := &state.Folders[i]
		if rule.Kind != types.RuleSource {
			continue
		}
		if firstSource == nil {
			firstSource = rule
		}
		base := strings.TrimRight(filepath.Base(filepath.Clean(rule.Folder)), "/")
		if base == "src" || base == "source" {
			preferred = rule
		}
	}
	if preferred != nil {
		return types.Target{Folder: preferred.Folder, Kind: types.RuleSource}, nil
	}
	if firstSource != nil {
		return types.Target{Folder: firstSource.Folder, Kind: types.RuleSource}, nil
	}
	return types.Target{}, errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("project has no src/ folder or program to run")
}

func stemOfPublic(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return base[:len(base)-len(ext)]
}
