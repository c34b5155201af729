package core

import (
	"os"
	"path/filepath"
)

// ManifestFileName is the default project manifest file name.
const ManifestFileName = "flymake.toml"

// wellKnownSourceFolders is the set of child folder names that mark a
// directory as a project root even without a manifest present.
var wellKnownSourceFolders = []string{"src", "source", "lib", "library"}

// DiscoverRoot checks path, then its parent, then its grandparent (§4.7)
// for a manifest file or a well-known source-folder layout, returning
// the discovered root and whether it was found via the "simple
// project" fallback (a folder with compilable files but no manifest
// and no recognized subfolder).
func DiscoverRoot(path string) (root string, isSimple bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}

	cur := abs
	for level := 0; level < 3; level++ {
		if hasManifest(cur) || hasWellKnownFolder(cur) {
			return cur, false, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	// Simple project fallback: the original folder itself, with no
	// manifest and no recognized layout, is treated as a project root
	// if it directly contains compilable files.
	if hasCompilableFiles(abs) {
		return abs, true, nil
	}

	return "", false, os.ErrNotExist
}

func hasManifest(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ManifestFileName))
	return err == nil
}

func hasWellKnownFolder(dir string) bool {
	for _, name := range wellKnownSourceFolders {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func hasCompilableFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	known := DefaultCompilerExtensions()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == "" {
			continue
		}
		if _, ok := known[ext[1:]]; ok {
			return true
		}
	}
	return false
}
