package adapters

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"flymake/internal/ports"
	"flymake/internal/shared"
)

// ArchiverAdapter wraps the "ar" archiver binary, grounded on the same
// exec.Command + CombinedOutput + shared.CommandError pattern the
// teacher uses for dpkg-buildpackage invocation.
type ArchiverAdapter struct{}

func NewArchiverAdapter() ArchiverAdapter {
	return ArchiverAdapter{}
}

// Archive creates or updates outPath (a static library, e.g. "lib/foo.a")
// from the given object files via "ar -crs".
func (a ArchiverAdapter) Archive(ctx context.Context, outPath string, objects []string, dryRun bool) error {
	if len(objects) == 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("no object files to archive into " + outPath)
	}
	args := append([]string{"-crs", outPath}, objects...)
	if dryRun {
		fmt.Println("ar " + strings.Join(args, " "))
		return nil
	}
	cmd := exec.CommandContext(ctx, "ar", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("ar failed for " + outPath).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

var _ ports.ArchiverPort = ArchiverAdapter{}
