package core

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/types"
)

// skipDirs mirrors the teacher's workspace-scan skip list, generalized
// from ROS workspace artifacts to C/C++ build artifacts: never descend
// into output or VCS directories while classifying sources.
func skipDirs(name string) bool {
	switch name {
	case "out", ".git", "deps":
		return true
	default:
		return false
	}
}

// ClassifySources walks folder up to maxDepth levels deep (0 meaning
// folder's own contents only) and returns every file whose extension
// (without a leading dot) is a key of extensions, sorted for
// deterministic build ordering. A missing folder returns (nil, nil);
// a folder path that is actually a file returns an error.
func ClassifySources(folder string, extensions map[string]struct{}, maxDepth int) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stat folder " + folder).
			WithCause(err)
	}
	if !info.IsDir() {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(folder + " is not a directory")
	}

	base := filepath.Clean(folder)
	var files []string
	walkErr := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != folder && skipDirs(d.Name()) {
				return filepath.SkipDir
			}
			if depthOf(base, path) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if depthOf(base, filepath.Dir(path)) > maxDepth {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := extensions[ext]; ok {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to classify sources under " + folder).
			WithCause(walkErr)
	}
	sort.Strings(files)
	return files, nil
}

func depthOf(base, path string) int {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// GroupIntoTools groups a sorted slice of source file paths into tools
// by shared basename prefix, claiming files left-to-right: the first
// unclaimed file starts a new tool named after its stem (basename
// without extension), and every subsequent file whose basename starts
// with that stem joins it.
func GroupIntoTools(sources []string) []types.Tool {
	var tools []types.Tool
	claimed := make([]bool, len(sources))
	for i, src := range sources {
		if claimed[i] {
			continue
		}
		stem := stemOf(src)
		tool := types.Tool{Name: stem, Sources: []string{src}}
		claimed[i] = true
		for j := i + 1; j < len(sources); j++ {
			if claimed[j] {
				continue
			}
			if strings.HasPrefix(filepath.Base(sources[j]), stem) {
				tool.Sources = append(tool.Sources, sources[j])
				claimed[j] = true
			}
		}
		tools = append(tools, tool)
	}
	return tools
}

func stemOf(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}
