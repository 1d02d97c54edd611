package fingerprint

import "os"

func cpuModel() string {
	return os.Getenv("PROCESSOR_IDENTIFIER")
}

func platformID() (string, error) {
	out, err := runCommand("wmic", "csproduct", "get", "UUID")
	if err != nil {
		return "", err
	}
	return parseWMICUUID(out), nil
}
