package core

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"flymake/internal/ports"
	"flymake/internal/types"
)

// DependencyResolver walks a project's declared dependencies,
// materializing git-backed ones, checking out prebuilt ones, and
// recursively resolving package (sibling-project) ones. Traversal is
// breadth-first across one project's dependency table, then
// depth-first into each package/git dependency's own sub-project -
// matching the order the original tool builds and links dependencies
// in before the project that needs them.
type DependencyResolver struct {
	Git      ports.GitPort
	Manifest ports.ManifestPort
}

func NewDependencyResolver(git ports.GitPort, manifest ports.ManifestPort) DependencyResolver {
	return DependencyResolver{Git: git, Manifest: manifest}
}

// Resolve populates state.Deps from the manifest's dependencies table,
// recursing into package/git sub-projects. It records resolved
// include paths and libraries onto state.IncludePaths/Libraries so
// folder builders can consume them unchanged.
func (r DependencyResolver) Resolve(ctx context.Context, state *types.ProjectState, manifest types.ProjectManifest) error {
	root := state.Root()
	if _, visiting := root.Visiting[state.RootPath]; visiting {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency cycle detected at " + state.RootPath)
	}
	root.Visiting[state.RootPath] = struct{}{}
	defer delete(root.Visiting, state.RootPath)

	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := manifest.Dependencies[name]

		if existing := findDependency(root, name); existing != nil {
			if err := checkCompatible(state, name, spec, existing); err != nil {
				return err
			}
			if existing.IncludeFolder != "" {
				state.IncludePaths = append(state.IncludePaths, existing.IncludeFolder)
			}
			continue
		}

		dep, err := r.resolveOne(ctx, state, name, spec)
		if err != nil {
			return err
		}
		root.Deps = append(root.Deps, dep)
		if dep.IncludeFolder != "" {
			state.IncludePaths = append(state.IncludePaths, dep.IncludeFolder)
		}
		root.Libraries = append(root.Libraries, dep.Libraries...)
	}
	return nil
}

// findDependency looks up name in the root state's canonical
// dependency list - the only list a dependency is ever created in,
// per §4.6. Dependencies inherited via recursion into sub-projects
// are merely propagated, never re-registered.
func findDependency(root *types.ProjectState, name string) *types.Dependency {
	for _, d := range root.Deps {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// checkCompatible enforces that a second declaration of an
// already-resolved dependency name is compatible with the first: the
// requested range must accept the resolved version, and for prebuilt
// shapes the include path must be identical.
func checkCompatible(state *types.ProjectState, name string, spec types.DependencySpec, existing *types.Dependency) error {
	requested := spec.Version
	if requested == "" {
		requested = "*"
	}
	if !RangeAccepts(requested, existing.ResolvedVersion) {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(state.ManifestPath + ": dependency " + name + " requests version " + requested +
				" but an incompatible version " + existing.ResolvedVersion + " was already resolved")
	}
	if existing.Shape == types.DependencyShapePrebuilt && spec.Inc != "" && spec.Inc != existing.IncludeFolder {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(state.ManifestPath + ": dependency " + name + " declares include path " + spec.Inc +
				" but was already resolved with include path " + existing.IncludeFolder)
	}
	return nil
}

func (r DependencyResolver) resolveOne(ctx context.Context, state *types.ProjectState, name string, spec types.DependencySpec) (*types.Dependency, error) {
	switch {
	case spec.Git != "":
		return r.resolveGit(ctx, state, name, spec)
	case spec.Path != "" && spec.Inc != "":
		return r.resolvePrebuilt(name, spec)
	case spec.Path != "":
		return r.resolvePackage(ctx, state, name, spec.Path)
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency " + name + " has no path or git source")
	}
}

// resolvePrebuilt handles `name = { path="../dep/lib/dep.a", inc="../dep/inc/" }`.
func (r DependencyResolver) resolvePrebuilt(name string, spec types.DependencySpec) (*types.Dependency, error) {
	libPath := spec.Path
	if !filepath.IsAbs(libPath) {
		libPath = filepath.Clean(libPath)
	}
	if _, err := os.Stat(libPath); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("prebuilt dependency " + name + ": " + libPath + " not found").
			WithCause(err)
	}
	resolvedVersion := spec.Version
	if resolvedVersion == "" {
		resolvedVersion = "*"
	}
	return &types.Dependency{
		Name:            name,
		Shape:           types.DependencyShapePrebuilt,
		RequestedRange:  spec.Version,
		ResolvedVersion: resolvedVersion,
		Libraries:       []string{libPath},
		IncludeFolder:   spec.Inc,
		Built:           true,
	}, nil
}

// resolvePackage handles `name = { path="../dep/" }`: a sibling
// project folder, built recursively as its own ProjectState.
func (r DependencyResolver) resolvePackage(ctx context.Context, state *types.ProjectState, name, relPath string) (*types.Dependency, error) {
	abs := relPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(state.RootPath, relPath)
	}
	return r.buildSubProject(ctx, state, name, abs)
}

// resolveGit handles `name = { git="...", branch="...", version="*" }`
// or `name = { git="...", sha="..." }`. version and sha are mutually
// exclusive.
func (r DependencyResolver) resolveGit(ctx context.Context, state *types.ProjectState, name string, spec types.DependencySpec) (*types.Dependency, error) {
	if spec.Version != "" && spec.Sha != "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("dependency " + name + ": version and sha are mutually exclusive")
	}

	dir := filepath.Join(state.DepDir, name)
	if err := os.MkdirAll(state.DepDir, 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create dependency directory").
			WithCause(err)
	}

	if err := r.Git.Clone(ctx, spec.Git, spec.Branch, dir); err != nil {
		return nil, err
	}

	resolvedVersion := spec.Version
	switch {
	case spec.Sha != "":
		if err := r.Git.Checkout(ctx, dir, spec.Sha); err != nil {
			return nil, err
		}
		resolvedVersion = spec.Sha
	case spec.Version != "" && spec.Version != "*":
		sha, err := r.Git.ResolveVersion(ctx, dir, spec.Version)
		if err != nil {
			return nil, err
		}
		if err := r.Git.Checkout(ctx, dir, sha); err != nil {
			return nil, err
		}
		resolvedVersion = sha
	default:
		// No sha/version pin: HEAD of the cloned branch is acceptable.
	}

	dep, err := r.buildSubProject(ctx, state, name, dir)
	if err != nil {
		return nil, err
	}
	dep.Shape = types.DependencyShapeGit
	dep.RequestedRange = spec.Version
	dep.ResolvedVersion = resolvedVersion
	return dep, nil
}

// buildSubProject loads and resolves a dependency's own project at
// abs, recursing through its own manifest and dependencies.
func (r DependencyResolver) buildSubProject(ctx context.Context, state *types.ProjectState, name, abs string) (*types.Dependency, error) {
	manifestPath := filepath.Join(abs, ManifestFileName)
	manifest, err := r.Manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	sub, err := BuildProjectState(ctx, abs, manifest, false)
	if err != nil {
		return nil, err
	}
	sub.Parent = state
	sub.ManifestPath = manifestPath

	if err := r.Resolve(ctx, sub, manifest); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Debug().Str("dependency", name).Str("root", abs).Msg("resolved package dependency")

	dep := &types.Dependency{
		Name:            name,
		Shape:           types.DependencyShapePackage,
		ResolvedVersion: sub.Version,
		IncludeFolder:   sub.IncludeFolder,
		SubState:        sub,
	}
	for _, rule := range sub.Folders {
		if rule.Kind == types.RuleLibrary {
			dep.Libraries = append(dep.Libraries, filepath.Join(rule.Folder, LibraryName(sub, rule.Folder)))
		}
	}
	if len(dep.Libraries) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("dependency " + name + " at " + abs + ": project cannot be built as library")
	}
	return dep, nil
}
