//go:build linux || darwin

package platform

import "golang.org/x/sys/unix"

// DisableCoreDumps sets RLIMIT_CORE to zero so that a crash cannot write
// derived keys or decrypted credentials to disk.
func DisableCoreDumps() error {
	var rlim unix.Rlimit
	rlim.Cur = 0
	rlim.Max = 0
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
