package fingerprint

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"time"
)

var errNoPlatformID = errors.New("fingerprint: no platform id on this OS")

const commandTimeout = 5 * time.Second

func hostname() (string, error) {
	return os.Hostname()
}

func processorDescription() (string, error) {
	if model := cpuModel(); model != "" {
		return model, nil
	}
	return runtime.GOARCH, nil
}

// readFirst returns the first non-empty file among paths.
func readFirst(paths ...string) (string, error) {
	var lastErr error = os.ErrNotExist
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		if v := strings.TrimSpace(string(b)); v != "" {
			return v, nil
		}
	}
	return "", lastErr
}

func runCommand(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseCPUModel extracts the first "model name" line of /proc/cpuinfo.
func parseCPUModel(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		if _, value, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// parseWMICUUID reads the value row of `wmic csproduct get UUID`.
func parseWMICUUID(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "UUID") {
			continue
		}
		return line
	}
	return ""
}

var ioregUUID = regexp.MustCompile(`"IOPlatformUUID"\s*=\s*"([^"]+)"`)

func parseIORegUUID(out string) string {
	m := ioregUUID.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return m[1]
}
