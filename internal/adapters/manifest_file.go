package adapters

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	toml "github.com/pelletier/go-toml/v2"

	"flymake/internal/ports"
	"flymake/internal/types"
)

// ManifestFileAdapter loads and writes a project's flymake.toml
// manifest, grounded on the teacher's SpecFileAdapter load/save shape
// but backed by go-toml/v2 rather than yaml.v3, since the manifest
// format is TOML with inline tables.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

// Load reads and decodes the manifest at path. A missing manifest is
// not an error - flymake projects may be "simple" projects with no
// manifest at all - so Load returns an empty manifest and a nil error
// for it.
func (a ManifestFileAdapter) Load(path string) (types.ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ProjectManifest{}, nil
		}
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read manifest " + path).
			WithCause(err)
	}

	var manifest types.ProjectManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return types.ProjectManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(formatDecodeError(path, err))
	}
	return manifest, nil
}

// Write serializes manifest back to path (used by `flymake new`).
func (a ManifestFileAdapter) Write(path string, manifest types.ProjectManifest) error {
	data, err := toml.Marshal(manifest)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode manifest").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write manifest " + path).
			WithCause(err)
	}
	return nil
}

// formatDecodeError renders a go-toml/v2 decode error as
// "<path>:<line>:<col>: error: <reason>" with the library's own
// caret-annotated context appended, rather than hand-tracking manifest
// text positions ourselves.
func formatDecodeError(path string, err error) string {
	var decodeErr *toml.DecodeError
	if de, ok := err.(*toml.DecodeError); ok {
		decodeErr = de
	}
	if decodeErr == nil {
		return fmt.Sprintf("%s: error: %v", path, err)
	}
	row, col := decodeErr.Position()
	return fmt.Sprintf("%s:%d:%d: error: %s\n%s", path, row, col, decodeErr.Error(), decodeErr.String())
}

var _ ports.ManifestPort = ManifestFileAdapter{}
