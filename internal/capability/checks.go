package capability

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"pixelpress/internal/config"
)

// CheckResult reports the outcome of a single host check.
type CheckResult struct {
	Name   string
	Passed bool
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) CheckResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return CheckResult{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return CheckResult{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// RunChecks evaluates directory access for every tree pixelpress
// touches.
func RunChecks(cfg *config.Config) []CheckResult {
	if cfg == nil {
		return nil
	}
	return []CheckResult{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
}
