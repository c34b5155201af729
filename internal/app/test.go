package app

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"flymake/internal/core"
	"flymake/internal/types"
)

type TestRequest struct {
	Path         string
	Target       string
	Args         []string
	ForceRebuild bool
	DryRun       bool
}

type TestResult struct {
	Run      int
	Failed   int
	ExitCode int
}

// Test builds a tool folder and runs every tool executable in it in
// turn, reporting the first non-zero exit code as the overall result.
// An empty Target resolves to the project's first tool-kind folder
// (by the "test/" well-known-folder convention of BuildProjectState).
func (s Service) Test(ctx context.Context, req TestRequest) (TestResult, error) {
	state, err := s.LoadProject(ctx, req.Path)
	if err != nil {
		return TestResult{}, err
	}

	folder := req.Target
	if folder == "" {
		for _, rule := range state.Folders {
			if rule.Kind == types.RuleTool {
				folder = rule.Folder
				break
			}
		}
	}
	if folder == "" {
		return TestResult{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("project has no tool folder to test")
	}

	if err := s.Builder.BuildDependencies(ctx, state, core.BuildOptions{DryRun: req.DryRun}); err != nil {
		return TestResult{}, err
	}

	rule := types.NewFolderRule(folder, types.RuleTool)
	opts := core.BuildOptions{ForceRebuild: req.ForceRebuild, DryRun: req.DryRun}
	if _, err := s.Builder.BuildTools(ctx, state, rule, opts, ""); err != nil {
		return TestResult{}, err
	}

	if req.DryRun {
		return TestResult{}, nil
	}

	sources, err := core.ClassifySources(rule.Folder, extensionsOf(state), 0)
	if err != nil {
		return TestResult{}, err
	}
	tools := core.GroupIntoTools(sources)

	result := TestResult{}
	for _, tool := range tools {
		execPath := filepath.Join(rule.Folder, tool.Name)
		cmd := exec.CommandContext(ctx, execPath, req.Args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		result.Run++
		if err := cmd.Run(); err != nil {
			result.Failed++
			if exitErr, ok := err.(*exec.ExitError); ok {
				if result.ExitCode == 0 {
					result.ExitCode = exitErr.ExitCode()
				}
			} else {
				return result, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to run test " + execPath).
					WithCause(err)
			}
			log.Ctx(ctx).Debug().Str("tool", tool.Name).Msg("test failed")
		}
	}
	return result, nil
}

func extensionsOf(state *types.ProjectState) map[string]struct{} {
	set := map[string]struct{}{}
	for _, rule := range state.Compilers {
		for _, ext := range rule.Extensions {
			set[ext] = struct{}{}
		}
	}
	return set
}
