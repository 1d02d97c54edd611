//go:build linux || darwin

package crypto

import "golang.org/x/sys/unix"

// pin keeps b out of swap until release is called. A failed mlock (usually
// RLIMIT_MEMLOCK) leaves b unpinned; callers still zero it.
func pin(b []byte) (release func()) {
	if err := unix.Mlock(b); err != nil {
		return func() {}
	}
	return func() { _ = unix.Munlock(b) }
}
