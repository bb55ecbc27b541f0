package dwg

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/flanksource/commons/logger"
)

// BinaryName is the file name of LibreDWG's converter on this platform.
func BinaryName() string {
	if runtime.GOOS == "windows" {
		return "dwg2dxf.exe"
	}
	return "dwg2dxf"
}

// ToolNotFoundError is returned when dwg2dxf cannot be located.
type ToolNotFoundError struct {
	Searched []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("required tool not found: %s (searched %v and PATH)\nPlace %s in the same directory as dwg2pdf.",
		BinaryName(), e.Searched, BinaryName())
}

// Locate finds dwg2dxf. An explicit path wins and must exist; otherwise the
// directory of the running executable is tried before PATH.
func Locate(explicit string) (string, error) {
	return locate(defaultExec, explicit)
}

func locate(ex executor, explicit string) (string, error) {
	if explicit != "" {
		if !isFile(explicit) {
			return "", &ToolNotFoundError{Searched: []string{explicit}}
		}
		return explicit, nil
	}

	var searched []string
	if self, err := ex.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(self); err == nil {
			self = resolved
		}
		candidate := filepath.Join(filepath.Dir(self), BinaryName())
		if isFile(candidate) {
			logger.Debugf("found %s next to the executable", candidate)
			return candidate, nil
		}
		searched = append(searched, candidate)
	}

	path, err := ex.LookPath(BinaryName())
	if err != nil {
		return "", &ToolNotFoundError{Searched: searched}
	}
	logger.Debugf("found %s in PATH", path)
	return path, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
