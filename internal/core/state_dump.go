package core

import (
	"gopkg.in/yaml.v3"

	"flymake/internal/types"
)

// stateDump is a flattened, cycle-free view of a types.ProjectState
// tree for diagnostic dumping: the Parent back-pointer is dropped so
// dependency sub-states can be walked outward without recursing back
// into their owning root.
type stateDump struct {
	Name              string           `yaml:"name"`
	Version           string           `yaml:"version"`
	RootPath          string           `yaml:"root_path"`
	IsSimple          bool             `yaml:"is_simple"`
	Folders           []folderDump     `yaml:"folders"`
	Deps              []dependencyDump `yaml:"deps,omitempty"`
	IncludePaths      []string         `yaml:"include_paths,omitempty"`
	Libraries         []string         `yaml:"libraries,omitempty"`
	FilesCompiled     int              `yaml:"files_compiled"`
	FilesEncountered  int              `yaml:"files_encountered"`
	LibraryRecompiled bool             `yaml:"library_recompiled"`
}

type folderDump struct {
	Folder string `yaml:"folder"`
	Kind   string `yaml:"kind"`
}

type dependencyDump struct {
	Name            string     `yaml:"name"`
	Shape           string     `yaml:"shape"`
	RequestedRange  string     `yaml:"requested_range,omitempty"`
	ResolvedVersion string     `yaml:"resolved_version,omitempty"`
	Built           bool       `yaml:"built"`
	SubState        *stateDump `yaml:"sub_state,omitempty"`
}

func toStateDump(state *types.ProjectState) stateDump {
	dump := stateDump{
		Name:              state.Name,
		Version:           state.Version,
		RootPath:          state.RootPath,
		IsSimple:          state.IsSimple,
		IncludePaths:      state.IncludePaths,
		Libraries:         state.Libraries,
		FilesCompiled:     state.FilesCompiled,
		FilesEncountered:  state.FilesEncountered,
		LibraryRecompiled: state.LibraryRecompiled,
	}
	for _, rule := range state.Folders {
		dump.Folders = append(dump.Folders, folderDump{Folder: rule.Folder, Kind: rule.Kind.String()})
	}
	for _, dep := range state.Deps {
		depDump := dependencyDump{
			Name:            dep.Name,
			Shape:           string(dep.Shape),
			RequestedRange:  dep.RequestedRange,
			ResolvedVersion: dep.ResolvedVersion,
			Built:           dep.Built,
		}
		if dep.SubState != nil {
			sub := toStateDump(dep.SubState)
			depDump.SubState = &sub
		}
		dump.Deps = append(dump.Deps, depDump)
	}
	return dump
}

// DumpState renders state's resolved dependency tree as YAML, for the
// --debug-state build diagnostic.
func DumpState(state *types.ProjectState) (string, error) {
	out, err := yaml.Marshal(toStateDump(state))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
