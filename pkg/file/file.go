package file

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Exists checks if a file exists and is not a directory before we
// try using it to prevent further errors.
func Exists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// FindConfigFile represents a function to locate a file under the "config" directory.
// It looks next to the executable first (usually for the production) and
// then in the project directory (usually for the development).
// An empty string is returned if neither exists.
func FindConfigFile(name string) string {
	ex, err := os.Executable()
	if err == nil {
		exePath := filepath.Dir(ex)
		candidate := filepath.Join(exePath, "config", name)
		if Exists(candidate) {
			return candidate
		}
	}

	path, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return ""
	}
	projectPath := strings.TrimSpace(string(path))
	candidate := filepath.Join(projectPath, "config", name)
	if Exists(candidate) {
		return candidate
	}
	return ""
}
