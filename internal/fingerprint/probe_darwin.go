package fingerprint

import "strings"

func cpuModel() string {
	out, err := runCommand("sysctl", "-n", "machdep.cpu.brand_string")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func platformID() (string, error) {
	out, err := runCommand("ioreg", "-rd1", "-c", "IOPlatformExpertDevice")
	if err != nil {
		return "", err
	}
	return parseIORegUUID(out), nil
}
