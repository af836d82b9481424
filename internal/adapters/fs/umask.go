package fs

import (
	"os"
	"sync"
	"syscall"

	"go.trai.ch/zerr"
)

var umaskOnce = sync.OnceValue(func() os.FileMode {
	// Reading the umask requires setting it; restore immediately. This runs
	// once, before the pipeline has touched any files.
	m := syscall.Umask(0)
	syscall.Umask(m)
	return os.FileMode(m) //nolint:gosec // umask fits in FileMode bits
})

// ExecutablePerm returns the permission bits for declared executables:
// 0777 masked by the process umask.
func ExecutablePerm() os.FileMode {
	return 0o777 &^ umaskOnce()
}

// MakeExecutable sets the executable permission bits on path.
func MakeExecutable(path string) error {
	if err := os.Chmod(path, ExecutablePerm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to mark executable"), "path", path)
	}
	return nil
}
