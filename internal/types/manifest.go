package types

// ProjectManifest is the decoded shape of a project's manifest file
// (default name "flymake.toml"). Table keys are preserved as map keys
// so the manifest loader can report the exact source position of a
// malformed entry.
type ProjectManifest struct {
	Package      PackageSpec                 `toml:"package"`
	Compiler     map[string]CompilerRuleSpec `toml:"compiler"`
	Folders      map[string]string           `toml:"folders"`
	Dependencies map[string]DependencySpec   `toml:"dependencies"`
}

type PackageSpec struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// CompilerRuleSpec is the TOML shape of a `[compiler.<exts>]` table,
// where <exts> is a dot-separated list of file extensions the rule
// applies to (e.g. "c" or "cpp.cc.cxx.C"). Keys mirror the manifest's
// required `cc`/`ll` (compile/link command templates) plus the
// optional `cc_dbg`/`ll_dbg`/`inc`/`warn` overrides.
type CompilerRuleSpec struct {
	Compile      string `toml:"cc"`
	Link         string `toml:"ll"`
	IncludeFlag  string `toml:"inc"`
	Warn         string `toml:"warn"`
	CompileDebug string `toml:"cc_dbg"`
	LinkDebug    string `toml:"ll_dbg"`
}

// DependencySpec is the TOML inline-table shape of a `[dependencies.<name>]`
// entry. Git, when set, makes it a git dependency; otherwise Path with
// Inc makes it prebuilt and Path alone makes it a package.
type DependencySpec struct {
	// Path + Inc: a prebuilt dependency, e.g.
	//   dep1 = { path="../dep1/lib/dep1.a", inc="../dep1/inc/" }
	Path string `toml:"path"`
	Inc  string `toml:"inc"`

	// Path alone: a sibling project folder built as a package dependency,
	// e.g. dep2 = { path="../dep2/" } - any Path declared without Inc
	// resolves to this shape, regardless of what the path looks like.

	// Git + Version/Sha: a git dependency, e.g.
	//   dep3 = { git="https://github.com/drewagislama/flylib", version="*" }
	// Version and Sha are mutually exclusive.
	Git     string `toml:"git"`
	Branch  string `toml:"branch"`
	Version string `toml:"version"`
	Sha     string `toml:"sha"`
}
