package types

// CompilerRule describes how to compile and link one group of file
// extensions. core.ValidateCompilerRule checks its placeholder
// invariant once per manifest-declared rule at load time.
type CompilerRule struct {
	Extensions   []string
	Compile      string
	Link         string
	IncludeFlag  string
	Warn         string
	CompileDebug string
	LinkDebug    string
}

// HasExtension reports whether ext (without a leading dot) is covered
// by this rule.
func (r CompilerRule) HasExtension(ext string) bool {
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// FolderRule binds a project-relative folder to the build rule applied
// to every source file it contains. Folder always carries a trailing
// path separator.
type FolderRule struct {
	Folder string
	Kind   RuleKind
}

// Target is a single resolved build/run/test target: a folder plus,
// for tool-folder rules, the specific file within it.
type Target struct {
	Arg    string
	Folder string
	File   string
	Kind   RuleKind
}

// Tool groups the source files that share a common basename prefix
// inside a tool folder; each tool compiles to its own executable.
type Tool struct {
	Name    string
	Sources []string
}

// Dependency is one resolved entry from a manifest's dependencies
// table, after prebuilt/package/git materialization.
type Dependency struct {
	Name            string
	Shape           DependencyShape
	RequestedRange  string
	ResolvedVersion string
	Libraries       []string
	IncludeFolder   string
	Built           bool

	// SubState is populated for package and git dependencies, whose
	// folder is itself a flymake project built recursively.
	SubState *ProjectState
}

// ProjectState is the fully-resolved in-memory view of one project
// (root or dependency sub-project). It holds no persisted pointers;
// every field is either a value or owned exclusively by this state,
// so nothing needs an explicit free - normal GC reclaims it once the
// orchestrator's call returns.
type ProjectState struct {
	Parent *ProjectState

	RootPath string // absolute path to the project root
	Name     string
	Version  string

	IncludeFolder string // "<root>/inc/" if present, else ""
	DepDir        string // "<root>/deps/"

	ManifestPath string
	IsSimple     bool // true when root discovery found this root by the simple-project fallback

	Compilers []CompilerRule
	Folders   []FolderRule
	Deps      []*Dependency

	// IncludePaths/Libraries accumulate include-flag/library-archive
	// entries contributed by resolved dependencies; IncludePaths feed
	// the compile step's {incs}, Libraries the link step's {libs}.
	IncludePaths []string
	Libraries    []string

	LibraryRecompiled bool
	FilesCompiled     int
	FilesEncountered  int

	// Visiting guards against a dependency cycle across package/git
	// sub-projects; only meaningful on the root state.
	Visiting map[string]struct{}
}

// IsRoot reports whether this state has no parent project.
func (p *ProjectState) IsRoot() bool {
	return p.Parent == nil
}

// Root walks up to the owning root project state.
func (p *ProjectState) Root() *ProjectState {
	cur := p
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// NewFolderRule normalizes folder to carry exactly one trailing
// separator and returns the rule.
func NewFolderRule(folder string, kind RuleKind) FolderRule {
	if folder == "" {
		return FolderRule{Folder: folder, Kind: kind}
	}
	if folder[len(folder)-1] != '/' {
		folder += "/"
	}
	return FolderRule{Folder: folder, Kind: kind}
}
