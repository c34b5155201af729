package core

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/types"
)

// ResolveTarget turns a CLI argument into a concrete build/run/test
// target: a bare folder name resolves against the project's declared
// folder rules; a path with any file extension resolves to that file
// within its parent folder's rule; an empty arg or the root itself
// resolves to the whole project. forcedRule, when not RuleNone,
// overrides the rule a matched folder would otherwise carry
// (mirrors the --lib/--rl/--rs/--rt CLI overrides).
func ResolveTarget(state *types.ProjectState, arg string, forcedRule types.RuleKind) (types.Target, error) {
	if strings.TrimSpace(arg) == "" {
		return types.Target{Arg: arg, Kind: types.RuleWholeProject}, nil
	}

	clean := filepath.Clean(arg)
	abs := clean
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(state.RootPath, clean)
	}

	if !sameRoot(state.RootPath, abs) {
		return types.Target{}, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("target " + arg + " is not under the project root")
	}

	if filepath.Clean(abs) == filepath.Clean(state.RootPath) {
		kind := types.RuleWholeProject
		if forcedRule != types.RuleNone {
			kind = forcedRule
		}
		return types.Target{Arg: arg, Kind: kind}, nil
	}

	ext := strings.TrimPrefix(filepath.Ext(abs), ".")
	if ext != "" {
		dir := filepath.Dir(abs) + string(filepath.Separator)
		rule, ok := findFolderRule(state, dir)
		if !ok {
			return types.Target{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("no build rule covers folder " + dir)
		}
		kind := rule.Kind
		if forcedRule != types.RuleNone {
			kind = forcedRule
		}
		return types.Target{Arg: arg, Folder: dir, File: abs, Kind: kind}, nil
	}

	dir := abs
	if dir[len(dir)-1] != filepath.Separator {
		dir += string(filepath.Separator)
	}
	rule, ok := findFolderRule(state, dir)
	if !ok {
		return types.Target{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no build rule covers folder " + dir)
	}
	kind := rule.Kind
	if forcedRule != types.RuleNone {
		kind = forcedRule
	}
	return types.Target{Arg: arg, Folder: dir, Kind: kind}, nil
}

func findFolderRule(state *types.ProjectState, dir string) (types.FolderRule, bool) {
	for _, rule := range state.Folders {
		if rule.Folder == dir {
			return rule, true
		}
	}
	return types.FolderRule{}, false
}

func sameRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}
