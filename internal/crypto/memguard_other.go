//go:build !linux && !darwin

package crypto

func pin([]byte) (release func()) { return func() {} }
