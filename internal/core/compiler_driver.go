package core

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"flymake/internal/shared"
	"flymake/internal/types"
)

// BuildOptions carries the CLI-level switches that influence a single
// compile/link invocation.
type BuildOptions struct {
	ForceRebuild bool
	Debug        bool
	DebugLevel   int // substituted into -DDEBUG=N when Debug is set
	DryRun       bool
	Warnings     bool
}

// ObjectPath returns the output-object path for source under outDir,
// following the "<out-folder>/<basename-without-ext>.o" convention.
func ObjectPath(source, outDir string) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(outDir, stem+".o")
}

// CompileFileWithIncludes compiles a single source file into
// outDir/<stem>.o, skipping the compile step when the object file is
// at least as new as the source and ForceRebuild is not set. includes is
// rendered into {incs} with the rule's include-flag prefix. Returns
// true if a compile actually ran.
func CompileFileWithIncludes(ctx context.Context, rule types.CompilerRule, source, outDir string, includes []string, opts BuildOptions) (bool, error) {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return false, err
	}
	if srcInfo.IsDir() {
		return false, &os.PathError{Op: "compile", Path: source, Err: os.ErrInvalid}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return false, err
	}
	outPath := ObjectPath(source, outDir)

	if !opts.ForceRebuild {
		if outInfo, err := os.Stat(outPath); err == nil {
			if !outInfo.ModTime().Before(srcInfo.ModTime()) {
				log.Ctx(ctx).Debug().Str("source", source).Msg("up to date, skipping compile")
				return false, nil
			}
		}
	}

	warn := ""
	if opts.Warnings {
		warn = rule.Warn
	}
	debug := ""
	if opts.Debug {
		level := opts.DebugLevel
		if level == 0 {
			level = 1
		}
		debug = strings.TrimSpace(rule.CompileDebug + fmt.Sprintf(" -DDEBUG=%d", level))
	}
	incFlag := rule.IncludeFlag
	if incFlag == "" {
		incFlag = "-I"
	}
	var incsList []string
	for _, inc := range includes {
		incsList = append(incsList, incFlag+inc)
	}
	incs := strings.Join(incsList, " ")

	cmdline := substitute(rule.Compile,
		[2]string{"{in}", source},
		[2]string{"{incs}", incs},
		[2]string{"{warn}", warn},
		[2]string{"{debug}", debug},
		[2]string{"{out}", outPath},
	)

	if opts.DryRun {
		fmt.Println(cmdline)
		return true, nil
	}

	log.Ctx(ctx).Debug().Str("cmd", cmdline).Msg("compiling")
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return false, shared.CommandError(output, err)
	}
	return true, nil
}

// LinkExecutable links the given object files into outPath using
// rule's Link template.
func LinkExecutable(ctx context.Context, rule types.CompilerRule, objects []string, libs []string, outPath string, opts BuildOptions) error {
	debug := ""
	if opts.Debug {
		debug = rule.LinkDebug
	}
	cmdline := substitute(rule.Link,
		[2]string{"{in}", strings.Join(objects, " ")},
		[2]string{"{libs}", strings.Join(libs, " ")},
		[2]string{"{debug}", debug},
		[2]string{"{out}", outPath},
	)
	if opts.DryRun {
		fmt.Println(cmdline)
		return nil
	}

	log.Ctx(ctx).Debug().Str("cmd", cmdline).Msg("linking")
	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return shared.CommandError(output, err)
	}
	return nil
}
