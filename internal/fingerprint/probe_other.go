//go:build !linux && !windows && !darwin

package fingerprint

func cpuModel() string { return "" }

func platformID() (string, error) {
	return "", errNoPlatformID
}
