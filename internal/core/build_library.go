package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"flymake/internal/ports"
	"flymake/internal/types"
)

// FolderBuilder compiles and links one folder rule's sources,
// returning whether anything was (re)compiled.
type FolderBuilder struct {
	Archiver ports.ArchiverPort
}

func NewFolderBuilder(archiver ports.ArchiverPort) FolderBuilder {
	return FolderBuilder{Archiver: archiver}
}

func extensionSet(rules []types.CompilerRule) map[string]struct{} {
	set := map[string]struct{}{}
	for _, rule := range rules {
		for _, ext := range rule.Extensions {
			set[ext] = struct{}{}
		}
	}
	return set
}

func ruleFor(rules []types.CompilerRule, ext string) (types.CompilerRule, bool) {
	for _, rule := range rules {
		if rule.HasExtension(ext) {
			return rule, true
		}
	}
	return types.CompilerRule{}, false
}

// BuildLibrary compiles every source file under rule.Folder and
// archives the resulting objects into the archive named by
// LibraryName, skipping the archive step if nothing was recompiled,
// the archive already exists, and ForceRebuild is not set.
func (b FolderBuilder) BuildLibrary(ctx context.Context, state *types.ProjectState, rule types.FolderRule, opts BuildOptions) (bool, error) {
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
	compiledAny := false
	for _, src := range sources {
		state.FilesEncountered++
		compilerRule, ok := ruleFor(state.Compilers, extOf(src))
		if !ok {
			continue
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

	archivePath := filepath.Join(rule.Folder, LibraryName(state, rule.Folder))
	archiveExists := false
	if _, err := os.Stat(archivePath); err == nil {
		archiveExists = true
	}
	if !compiledAny && archiveExists && !opts.ForceRebuild {
		log.Ctx(ctx).Debug().Str("folder", rule.Folder).Msg("folder up to date")
		return false, nil
	}
	if err := b.Archiver.Archive(ctx, archivePath, objects, opts.DryRun); err != nil {
		return false, err
	}
	state.LibraryRecompiled = true
	return true, nil
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}
