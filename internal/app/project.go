package app

import (
	"context"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"flymake/internal/core"
	"flymake/internal/types"
)

// LoadProject discovers the project root starting from path, loads
// its manifest (if any), builds the fully-populated ProjectState, and
// resolves its dependency graph.
func (s Service) LoadProject(ctx context.Context, path string) (*types.ProjectState, error) {
	root, isSimple, err := core.DiscoverRoot(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("not a flymake project: " + path).
			WithCause(err)
	}

	manifestPath := filepath.Join(root, core.ManifestFileName)
	manifest, err := s.Manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	state, err := core.BuildProjectState(ctx, root, manifest, isSimple)
	if err != nil {
		return nil, err
	}
	state.ManifestPath = manifestPath

	if len(state.Folders) == 0 {
		log.Ctx(ctx).Debug().Str("root", root).Msg("empty project: no folder rules found")
	}

	if err := s.Resolver.Resolve(ctx, state, manifest); err != nil {
		return nil, err
	}

	return state, nil
}
