package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/types"
)

type NewRequest struct {
	Path    string // directory to scaffold into
	Name    string
	Library bool // --lib: scaffold a lib/ folder instead of src/
	Cpp     bool // --cpp: scaffold a C++ starter instead of C
}

type NewResult struct {
	Root string
}

// New scaffolds a fresh project at req.Path: a manifest naming the
// project, and either a src/ folder with a starter main.c (the
// default) or a lib/ folder with a starter source file (--lib).
func (s Service) New(ctx context.Context, req NewRequest) (NewResult, error) {
	root, err := filepath.Abs(req.Path)
	if err != nil {
		return NewResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid project path").
			WithCause(err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return NewResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create project directory").
			WithCause(err)
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(root)
	}

	ext := ".c"
	if req.Cpp {
		ext = ".cpp"
	}

	folderName := "src"
	fileName := "main" + ext
	if req.Library {
		folderName = "lib"
		fileName = name + ext
		if err := os.MkdirAll(filepath.Join(root, "inc"), 0o755); err != nil {
			return NewResult{}, err
		}
	}

	folder := filepath.Join(root, folderName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return NewResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create " + folderName + " folder").
			WithCause(err)
	}

	starterPath := filepath.Join(folder, fileName)
	if _, err := os.Stat(starterPath); os.IsNotExist(err) {
		content := starterSourceContent(name, req.Library, req.Cpp)
		if err := os.WriteFile(starterPath, []byte(content), 0o644); err != nil {
			return NewResult{}, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write starter source").
				WithCause(err)
		}
	}

	manifest := types.ProjectManifest{
		Package: types.PackageSpec{Name: name, Version: "0.1.0"},
	}
	manifestPath := filepath.Join(root, "flymake.toml")
	if err := s.Manifest.Write(manifestPath, manifest); err != nil {
		return NewResult{}, err
	}

	return NewResult{Root: root}, nil
}

func starterSourceContent(name string, isLibrary, isCpp bool) string {
	if isLibrary {
		return "/* " + name + " library starter source */\n"
	}
	if isCpp {
		return `#include <iostream>

int main(int argc, char **argv)
{
  std::cout << "hello from ` + name + `" << std::endl;
  return 0;
}
`
	}
	return `#include <stdio.h>

int main(int argc, char **argv)
{
  printf("hello from ` + name + `\n");
  return 0;
}
`
}
