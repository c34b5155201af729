package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/types"
)

// DefaultCompilerExtensions returns the extensions of the built-in
// C/C++ compiler rules; root discovery uses it to recognize a "simple"
// project folder that holds compilable files.
func DefaultCompilerExtensions() map[string]struct{} {
	return map[string]struct{}{
		"c": {}, "cpp": {}, "cc": {}, "cxx": {}, "C": {},
	}
}

func defaultCompilerRules() []types.CompilerRule {
	return []types.CompilerRule{
		{
			Extensions:   []string{"c"},
			Compile:      "gcc -c {in} {incs} {warn} {debug} -o {out}",
			Link:         "gcc {in} {libs} {debug} -o {out}",
			IncludeFlag:  "-I",
			Warn:         "-Wall",
			CompileDebug: "-g",
			LinkDebug:    "-g",
		},
		{
			Extensions:   []string{"cpp", "cc", "cxx", "C"},
			Compile:      "g++ -c {in} {incs} {warn} {debug} -o {out}",
			Link:         "g++ {in} {libs} {debug} -o {out}",
			IncludeFlag:  "-I",
			Warn:         "-Wall",
			CompileDebug: "-g",
			LinkDebug:    "-g",
		},
	}
}

// requiredCompilePlaceholders and requiredLinkPlaceholders list, per
// template kind, the placeholders that
// must appear in a compiler rule's command template exactly once.
var requiredCompilePlaceholders = []string{"{in}", "{out}"}
var requiredLinkPlaceholders = []string{"{in}", "{out}"}

// ValidateCompilerRule enforces the exact-once placeholder invariant:
// {in} and {out} must each appear exactly once in Compile and Link.
// {incs}, {warn}, {debug} and {libs} are optional but, when present,
// must also appear at most once.
func ValidateCompilerRule(rule types.CompilerRule) error {
	if err := validateTemplate(rule.Compile, requiredCompilePlaceholders, []string{"{incs}", "{warn}", "{debug}"}); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("compiler rule for %s: compile template: %v", strings.Join(rule.Extensions, "."), err))
	}
	if err := validateTemplate(rule.Link, requiredLinkPlaceholders, []string{"{libs}", "{debug}"}); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("compiler rule for %s: link template: %v", strings.Join(rule.Extensions, "."), err))
	}
	return nil
}

func validateTemplate(tmpl string, required, optional []string) error {
	for _, ph := range required {
		if n := strings.Count(tmpl, ph); n != 1 {
			return fmt.Errorf("placeholder %s must appear exactly once, found %d", ph, n)
		}
	}
	for _, ph := range optional {
		if n := strings.Count(tmpl, ph); n > 1 {
			return fmt.Errorf("placeholder %s must appear at most once, found %d", ph, n)
		}
	}
	return nil
}

// BuildProjectState constructs a fully-populated ProjectState from a
// decoded manifest and the discovered root directory, applying
// defaults, merging compiler rules, and scanning for folder rules
// (manifest-declared first, well-known-folder fallback second, simple
// project fallback third).
func BuildProjectState(ctx context.Context, root string, manifest types.ProjectManifest, isSimple bool) (*types.ProjectState, error) {
	assert.NotEmpty(ctx, root, "project root must be set")

	name := strings.TrimSpace(manifest.Package.Name)
	if name == "" {
		name = filepath.Base(root)
	}
	version := strings.TrimSpace(manifest.Package.Version)
	if version == "" {
		version = "*"
	}

	state := &types.ProjectState{
		RootPath: root,
		Name:     name,
		Version:  version,
		DepDir:   filepath.Join(root, "deps") + string(filepath.Separator),
		IsSimple: isSimple,
		Visiting: map[string]struct{}{},
	}

	if incInfo, err := os.Stat(filepath.Join(root, "inc")); err == nil && incInfo.IsDir() {
		state.IncludeFolder = filepath.Join(root, "inc") + string(filepath.Separator)
	}

	compilers := defaultCompilerRules()
	for key, spec := range manifest.Compiler {
		rule := types.CompilerRule{
			Extensions:   strings.Split(key, "."),
			Compile:      spec.Compile,
			Link:         spec.Link,
			IncludeFlag:  spec.IncludeFlag,
			Warn:         spec.Warn,
			CompileDebug: spec.CompileDebug,
			LinkDebug:    spec.LinkDebug,
		}
		if rule.IncludeFlag == "" {
			rule.IncludeFlag = "-I"
		}
		if err := ValidateCompilerRule(rule); err != nil {
			return nil, err
		}
		compilers = replaceOrAppendRule(compilers, rule)
	}
	state.Compilers = compilers

	folders, err := buildFolderRules(root, manifest, isSimple)
	if err != nil {
		return nil, err
	}
	state.Folders = folders

	return state, nil
}

func replaceOrAppendRule(rules []types.CompilerRule, rule types.CompilerRule) []types.CompilerRule {
	key := strings.Join(rule.Extensions, ".")
	for i, existing := range rules {
		if strings.Join(existing.Extensions, ".") == key {
			rules[i] = rule
			return rules
		}
	}
	return append(rules, rule)
}

func buildFolderRules(root string, manifest types.ProjectManifest, isSimple bool) ([]types.FolderRule, error) {
	var rules []types.FolderRule

	for folder, kind := range manifest.Folders {
		rk, err := parseRuleKind(kind)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("folder %q: %v", folder, err))
		}
		abs := filepath.Join(root, folder)
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		rules = append(rules, types.NewFolderRule(abs, rk))
	}
	if len(rules) > 0 {
		return rules, nil
	}

	// Well-known-folder fallback.
	known := []struct {
		name string
		kind types.RuleKind
	}{
		{"src", types.RuleSource}, {"source", types.RuleSource},
		{"lib", types.RuleLibrary}, {"library", types.RuleLibrary},
		{"test", types.RuleTool},
	}
	for _, k := range known {
		abs := filepath.Join(root, k.name)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			rules = append(rules, types.NewFolderRule(abs, k.kind))
		}
	}
	if len(rules) > 0 {
		return rules, nil
	}

	// Simple project fallback: the root itself, one level deep, as a
	// library or source-program folder depending on whether it has an
	// "inc" sibling (library convention) - matched by presence of an
	// "inc" folder, else treated as a source-program folder.
	if isSimple {
		if _, err := os.Stat(filepath.Join(root, "inc")); err == nil {
			rules = append(rules, types.NewFolderRule(root, types.RuleLibrary))
		} else {
			rules = append(rules, types.NewFolderRule(root, types.RuleSource))
		}
	}
	return rules, nil
}

func parseRuleKind(kind string) (types.RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "lib", "library":
		return types.RuleLibrary, nil
	case "src", "source":
		return types.RuleSource, nil
	case "tool", "tools":
		return types.RuleTool, nil
	default:
		return types.RuleNone, fmt.Errorf("unknown folder rule kind %q", kind)
	}
}
